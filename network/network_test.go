package network

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"cosmic/protocol"
	"cosmic/room"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func startServer(t *testing.T, opts Options) (*httptest.Server, *room.Manager) {
	t.Helper()
	m := room.NewManager(room.Options{SnapshotInterval: time.Hour, Logger: quietLogger()})
	m.Start()
	t.Cleanup(m.Stop)
	opts.Logger = quietLogger()
	srv := httptest.NewServer(NewServer(m, opts).Router())
	t.Cleanup(srv.Close)
	return srv, m
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func writeEnvelope(t *testing.T, c *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readUntil(t *testing.T, c *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, b, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		env, err := protocol.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.T == typ {
			return env
		}
	}
}

func TestWebSocketJoinRoundTrip(t *testing.T) {
	srv, _ := startServer(t, Options{})
	c := dial(t, srv)

	env := readUntil(t, c, protocol.MsgConnectionEstablished)
	ce, err := protocol.DecodePayload[protocol.ConnectionEstablished](env)
	if err != nil || ce.ID == "" {
		t.Fatalf("connectionEstablished = %+v, %v", ce, err)
	}

	writeEnvelope(t, c, protocol.MsgPlayerJoin, protocol.PlayerJoin{PlayerName: "Alice", RocketType: "red"})
	env = readUntil(t, c, protocol.MsgFullGameState)
	st, err := protocol.DecodePayload[protocol.FullGameState](env)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(st.Players) != 1 || st.Players[0].ID != ce.ID || !st.Players[0].IsHost {
		t.Fatalf("snapshot players = %+v", st.Players)
	}
}

func TestMalformedFramesAreSkipped(t *testing.T) {
	srv, _ := startServer(t, Options{})
	c := dial(t, srv)
	readUntil(t, c, protocol.MsgConnectionEstablished)

	for _, frame := range []string{"not json", `{"p":{}}`, `[]`} {
		if err := c.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	writeEnvelope(t, c, protocol.MsgPingServer, protocol.Empty{})
	env := readUntil(t, c, protocol.MsgPongServer)
	pong, _ := protocol.DecodePayload[protocol.PongServer](env)
	if pong.Status != "connected" {
		t.Fatalf("pong = %+v", pong)
	}
}

func TestIntentRateLimitDropsExcess(t *testing.T) {
	srv, _ := startServer(t, Options{IntentRate: 0.01, IntentBurst: 2})
	c := dial(t, srv)
	readUntil(t, c, protocol.MsgConnectionEstablished)

	for i := 0; i < 6; i++ {
		writeEnvelope(t, c, protocol.MsgPingServer, protocol.Empty{})
	}
	pongs := 0
	_ = c.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	for {
		_, b, err := c.ReadMessage()
		if err != nil {
			break
		}
		if env, err := protocol.DecodeEnvelope(b); err == nil && env.T == protocol.MsgPongServer {
			pongs++
		}
	}
	if pongs != 2 {
		t.Fatalf("got %d pongs, want 2", pongs)
	}
}

func TestSilentClientIsDisconnected(t *testing.T) {
	srv, m := startServer(t, Options{PingInterval: 20 * time.Millisecond, PingTimeout: 40 * time.Millisecond})
	c := dial(t, srv)
	c.SetPingHandler(func(string) error { return nil })
	readUntil(t, c, protocol.MsgConnectionEstablished)

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	deadline := time.Now().Add(time.Second)
	for {
		info, err := m.Info(context.Background())
		if err != nil {
			t.Fatalf("info: %v", err)
		}
		if info.Connections == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("connection still registered: %+v", info)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := startServer(t, Options{})
	c := dial(t, srv)
	readUntil(t, c, protocol.MsgConnectionEstablished)
	writeEnvelope(t, c, protocol.MsgPlayerJoin, protocol.PlayerJoin{PlayerName: "Alice", RocketType: "red"})
	readUntil(t, c, protocol.MsgFullGameState)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "ok" || h.PlayerCount != 1 || h.Phase != "waiting" {
		t.Fatalf("health = %+v", h)
	}
}

func TestRoomInfoEndpointRejectsPost(t *testing.T) {
	srv, _ := startServer(t, Options{})
	resp, err := http.Post(srv.URL+"/api/room", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/room")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var info room.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Phase != "empty" || len(info.HubProgress) != 4 {
		t.Fatalf("info = %+v", info)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://play.example.com"})
	cases := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "game.example.com", true},
		{"https://game.example.com", "game.example.com", true},
		{"http://localhost:5173", "game.example.com", true},
		{"https://play.example.com", "game.example.com", true},
		{"https://evil.example.com", "game.example.com", false},
		{"://bad", "game.example.com", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = tc.host
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := check(r); got != tc.want {
			t.Errorf("origin %q host %q = %v, want %v", tc.origin, tc.host, got, tc.want)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://anything.example")
	if !originChecker([]string{"*"})(r) {
		t.Fatalf("wildcard rejected an origin")
	}
}

func TestWSConnSendNeverBlocks(t *testing.T) {
	c := &wsConn{send: make(chan []byte, 1), done: make(chan struct{})}
	if err := c.Send([]byte("a")); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := c.Send([]byte("b")); !errors.Is(err, ErrSendBufferFull) {
		t.Fatalf("second send err = %v, want ErrSendBufferFull", err)
	}
	c.Close()
	c.Close()
	if err := c.Send([]byte("c")); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("send after close err = %v, want ErrConnClosed", err)
	}
}
