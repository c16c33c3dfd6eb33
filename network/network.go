package network

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"cosmic/protocol"
	"cosmic/room"
)

// maxFrameBytes bounds a single client frame.
const maxFrameBytes = 64 << 10

// Hub is the part of room.Manager the transport needs.
type Hub interface {
	Connect(c room.Conn) (string, error)
	Deliver(id string, env protocol.Envelope)
	Disconnect(id string)
	Info(ctx context.Context) (room.Info, error)
}

type Options struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	PingTimeout    time.Duration
	SendBuffer     int
	IntentRate     float64
	IntentBurst    int
	Logger         *log.Logger
}

type Server struct {
	hub      Hub
	opts     Options
	upgrader websocket.Upgrader
	started  time.Time
	logger   *log.Logger
}

func NewServer(hub Hub, opts Options) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 2 * time.Second
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.IntentRate <= 0 {
		opts.IntentRate = 120
	}
	if opts.IntentBurst <= 0 {
		opts.IntentBurst = 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		hub:  hub,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		started: time.Now(),
		logger:  logger,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/room", s.roomInfo).Methods(http.MethodGet)
	return r
}

// ServeWS upgrades the request and pumps frames between the socket and the
// room until either side gives up.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("ws: upgrade: %v", err)
		return
	}
	conn := newWSConn(ws, s.opts.SendBuffer)
	go conn.writePump(s.opts.PingInterval)

	id, err := s.hub.Connect(conn)
	if err != nil {
		s.logger.Printf("ws: connect refused: %v", err)
		conn.Close()
		return
	}
	s.logger.Printf("ws: %s connected from %s", id, r.RemoteAddr)
	defer func() {
		s.hub.Disconnect(id)
		conn.Close()
		s.logger.Printf("ws: %s disconnected", id)
	}()

	s.readPump(id, ws)
}

func (s *Server) readPump(id string, ws *websocket.Conn) {
	deadline := s.opts.PingInterval + s.opts.PingTimeout
	ws.SetReadLimit(maxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(deadline))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(deadline))
	})

	limiter := rate.NewLimiter(rate.Limit(s.opts.IntentRate), s.opts.IntentBurst)
	dropped := 0
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("ws: %s read: %v", id, err)
			}
			return
		}
		// Any inbound frame proves liveness.
		_ = ws.SetReadDeadline(time.Now().Add(deadline))

		if !limiter.Allow() {
			dropped++
			if dropped == 1 || dropped%100 == 0 {
				s.logger.Printf("ws: %s over intent rate, %d frames dropped", id, dropped)
			}
			continue
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			s.logger.Printf("ws: %s discarding malformed message: %v", id, err)
			continue
		}
		s.hub.Deliver(id, env)
	}
}

type healthResponse struct {
	Status      string  `json:"status"`
	Uptime      float64 `json:"uptime"`
	Timestamp   int64   `json:"timestamp"`
	PlayerCount int     `json:"playerCount"`
	Phase       string  `json:"phase"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	info, err := s.hub.Info(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "unavailable",
			Uptime:    time.Since(s.started).Seconds(),
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Uptime:      time.Since(s.started).Seconds(),
		Timestamp:   time.Now().UnixMilli(),
		PlayerCount: info.Players,
		Phase:       string(info.Phase),
	})
}

func (s *Server) roomInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.hub.Info(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
