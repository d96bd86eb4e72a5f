package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestSanitizeNickname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ana", "ana"},
		{"a", "Player"},
		{"", "Player"},
		{"<script>x</script>", "scriptxscrip"},
		{"Дмитрий_1", "Дмитрий_1"},
		{"averyveryverylongname", "averyveryver"},
		{"\xff\xfe", "Player"},
		{"  Ana   Lee ", "Ana Lee"},
		{"Ana\tLee", "AnaLee"},
		{"abcdefghijk lmn", "abcdefghijk"},
	}
	for _, tt := range tests {
		if got := SanitizeNickname(tt.in); got != tt.want {
			t.Errorf("SanitizeNickname(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(MsgAim, 7, PointPayload{X: 1.5, Y: -2})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != MsgAim || got.Tick != 7 || string(got.Payload) != `{"x":1.5,"y":-2}` {
		t.Errorf("decoded %+v payload %s", got, got.Payload)
	}
}

// echoCreator greets every connection by nickname and closes it.
type echoCreator struct {
	rooms chan *Conn
}

func (e *echoCreator) CreateRoom(c *Conn) {
	msg, _ := NewMessage(MsgWelcome, 0, WelcomePayload{Nickname: c.Nickname})
	c.Send(msg)
	e.rooms <- c
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return c
}

func TestHubCreatesRoomPerConnection(t *testing.T) {
	creator := &echoCreator{rooms: make(chan *Conn, 1)}
	hub := NewHub(creator, nil, nil, 4)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv, "name=Ana%21")
	defer c.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := Decode(data)
	if err != nil || msg.Type != MsgWelcome || !strings.Contains(string(msg.Payload), `"Ana"`) {
		t.Errorf("welcome = %+v (%v)", msg, err)
	}

	room := <-creator.rooms
	if got := hub.Stats().ActiveRooms; got != 1 {
		t.Errorf("active rooms = %d, want 1", got)
	}
	room.Close()
	hub.RoomEnded()
	if got := hub.Stats(); got.ActiveRooms != 0 || got.TotalConnections != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestHubRejectsWhenFull(t *testing.T) {
	creator := &echoCreator{rooms: make(chan *Conn, 2)}
	hub := NewHub(creator, nil, nil, 1)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	first := dial(t, srv, "name=one")
	defer first.Close(websocket.StatusNormalClosure, "")
	<-creator.rooms

	second := dial(t, srv, "name=two")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := second.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusTryAgainLater {
		t.Errorf("second connection: err = %v, want try-again-later close", err)
	}
	if got := hub.Stats().RejectedFull; got != 1 {
		t.Errorf("rejected = %d, want 1", got)
	}
}
