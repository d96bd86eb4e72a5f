package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Tuning is the part of the configuration read from the TOML file.
type Tuning struct {
	Physics physics.Params `toml:"physics"`
	Assist  physics.Assist `toml:"assist"`
	Arena   ArenaConfig    `toml:"arena"`
}

// ArenaConfig is the arena used by the server; terminal clients size it from the screen.
type ArenaConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Config struct {
	Environment string

	// Server
	Port           string
	StaticDir      string
	AllowedOrigins []string
	MaxConnsPerIP  int
	MsgRatePerSec  int
	MaxRooms       int

	// Storage. Empty URLs select the in-memory store and disable the attempt log.
	RedisURL       string
	DatabaseURL    string
	MigrateOnStart bool

	// Tuning file
	TuningFile string
	Tuning     Tuning
}

// Load reads .env (if present), the environment and the optional tuning file.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		StaticDir:      getEnv("STATIC_DIR", "./web"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
		MaxConnsPerIP:  getEnvInt("MAX_CONNS_PER_IP", 4),
		MsgRatePerSec:  getEnvInt("MSG_RATE_PER_SEC", 240),
		MaxRooms:       getEnvInt("MAX_ROOMS", 200),
		RedisURL:       getEnv("REDIS_URL", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",
		TuningFile:     getEnv("TUNING_FILE", ""),
		Tuning:         DefaultTuning(),
	}

	if cfg.TuningFile != "" {
		t, err := LoadTuning(cfg.TuningFile)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = t
	}
	return cfg, nil
}

func DefaultTuning() Tuning {
	return Tuning{
		Physics: physics.DefaultParams(),
		Assist:  physics.Assist{TargetScale: 1},
		Arena:   ArenaConfig{Width: 1280, Height: 720},
	}
}

// LoadTuning decodes a TOML file over the defaults, so the file only needs the keys it
// changes.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Tuning{}, fmt.Errorf("decode tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate rejects values the physics engine cannot run with.
func (t Tuning) Validate() error {
	p := t.Physics
	switch {
	case p.AirDrag <= 0 || p.AirDrag >= 1:
		return fmt.Errorf("%w: air_drag must be in (0, 1), got %v", ErrInvalid, p.AirDrag)
	case p.MaxSubStep <= 0:
		return fmt.Errorf("%w: max_sub_step must be positive, got %v", ErrInvalid, p.MaxSubStep)
	case p.MaxFrameDelta <= 0:
		return fmt.Errorf("%w: max_frame_delta must be positive, got %v", ErrInvalid, p.MaxFrameDelta)
	case p.RestitutionGround < 0 || p.RestitutionSide < 0:
		return fmt.Errorf("%w: restitution must not be negative", ErrInvalid)
	case p.PreviewSteps < 0 || p.TrailLength < 0:
		return fmt.Errorf("%w: preview_steps and trail_length must not be negative", ErrInvalid)
	case t.Assist.Forgiveness < 0:
		return fmt.Errorf("%w: assist forgiveness must not be negative", ErrInvalid)
	case t.Arena.Width <= 0 || t.Arena.Height <= 0:
		return fmt.Errorf("%w: arena size must be positive, got %vx%v", ErrInvalid, t.Arena.Width, t.Arena.Height)
	}
	return nil
}

// WriteTuning saves t as TOML, used to dump the defaults for editing.
func WriteTuning(path string, t Tuning) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tuning file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(t); err != nil {
		return fmt.Errorf("encode tuning file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
