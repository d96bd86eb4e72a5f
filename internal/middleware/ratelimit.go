package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor is one IP's open sockets plus separate token buckets for socket input and
// API requests.
type visitor struct {
	connections int
	input       *rate.Limiter
	api         *rate.Limiter
}

// IPRateLimiter caps simultaneous sockets per IP and the rate of input messages and API
// requests.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once

	maxConnsPerIP int
	limit         rate.Limit
	burst         int
}

// NewIPRateLimiter allows maxConnsPerIP sockets and msgRate messages per msgWindow from
// each IP. A full window's worth may arrive as a burst.
func NewIPRateLimiter(maxConnsPerIP, msgRate int, msgWindow time.Duration) *IPRateLimiter {
	if msgRate < 1 {
		msgRate = 1
	}
	rl := &IPRateLimiter{
		visitors:      make(map[string]*visitor),
		now:           time.Now,
		stop:          make(chan struct{}),
		maxConnsPerIP: maxConnsPerIP,
		limit:         rate.Every(msgWindow / time.Duration(msgRate)),
		burst:         msgRate,
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// ConnectAllowed takes a socket slot for ip if one is free.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v := rl.visitor(ip)
	if v.connections >= rl.maxConnsPerIP {
		return false
	}
	v.connections++
	return true
}

// Disconnect gives back a slot taken by ConnectAllowed.
func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok && v.connections > 0 {
		v.connections--
	}
}

// MessageAllowed spends one input token for ip.
func (rl *IPRateLimiter) MessageAllowed(ip string) bool {
	return rl.allow(ip, func(v *visitor) *rate.Limiter { return v.input })
}

func (rl *IPRateLimiter) requestAllowed(ip string) bool {
	return rl.allow(ip, func(v *visitor) *rate.Limiter { return v.api })
}

func (rl *IPRateLimiter) allow(ip string, pick func(*visitor) *rate.Limiter) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return pick(rl.visitor(ip)).AllowN(rl.now(), 1)
}

// visitor returns the entry for ip, creating it with full buckets. Callers hold mu.
func (rl *IPRateLimiter) visitor(ip string) *visitor {
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{
			input: rate.NewLimiter(rl.limit, rl.burst),
			api:   rate.NewLimiter(rl.limit, rl.burst),
		}
		rl.visitors[ip] = v
	}
	return v
}

// Gin rejects API requests over the per-IP rate with 429.
func (rl *IPRateLimiter) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.requestAllowed(RealIP(c.Request)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (rl *IPRateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep forgets IPs with no open sockets.
func (rl *IPRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if v.connections == 0 {
			delete(rl.visitors, ip)
		}
	}
}

// RealIP is the first X-Forwarded-For hop when a proxy set one, else the peer address.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
