package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/report"
	"github.com/relabs-tech/velocity_gauge/internal/reps"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsMessage is the envelope pushed to browser clients.
type wsMessage struct {
	Type string `json:"type"` // status, telemetry, summary
	Data any    `json:"data"`
}

// hub fans messages out to websocket clients. Slow clients miss messages.
type hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan []byte]struct{})}
}

func (h *hub) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (h *hub) broadcast(typ string, data any) {
	msg, err := json.Marshal(wsMessage{Type: typ, Data: data})
	if err != nil {
		log.Printf("web: json marshal error (%s): %v", typ, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// liveState holds the latest recorder output seen on MQTT.
type liveState struct {
	mu            sync.RWMutex
	status        StatusMessage
	haveStatus    bool
	telemetry     session.Telemetry
	haveTelemetry bool
	summary       session.Summary
	haveSummary   bool

	hub *hub
}

func newLiveState() *liveState {
	return &liveState{hub: newHub()}
}

func (s *liveState) setStatus(st StatusMessage) {
	s.mu.Lock()
	s.status = st
	s.haveStatus = true
	s.mu.Unlock()
	s.hub.broadcast("status", st)
}

func (s *liveState) setTelemetry(t session.Telemetry) {
	s.mu.Lock()
	s.telemetry = t
	s.haveTelemetry = true
	s.mu.Unlock()
	s.hub.broadcast("telemetry", t)
}

func (s *liveState) setSummary(sum session.Summary) {
	s.mu.Lock()
	s.summary = sum
	s.haveSummary = true
	s.mu.Unlock()
	// charts are served on /charts
	sum.Charts = nil
	s.hub.broadcast("summary", sum)
}

// sessionView is the /api/session response.
type sessionView struct {
	Status    StatusMessage      `json:"status"`
	Telemetry *session.Telemetry `json:"telemetry,omitempty"`
}

// repsView is the /api/reps response.
type repsView struct {
	SessionID    string            `json:"session_id"`
	Reps         []reps.Repetition `json:"reps"`
	Results      []session.Result  `json:"results"`
	PeakVelocity float64           `json:"peak_velocity"`
	Samples      int               `json:"samples"`
	Rejected     int               `json:"rejected"`
	Error        string            `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func (s *liveState) handleSession(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveStatus && !s.haveTelemetry {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	view := sessionView{Status: s.status}
	if s.haveTelemetry {
		t := s.telemetry
		view.Telemetry = &t
	}
	writeJSON(w, view)
}

func (s *liveState) handleReps(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveSummary {
		http.Error(w, "no session finished yet", http.StatusServiceUnavailable)
		return
	}
	sum := s.summary
	writeJSON(w, repsView{
		SessionID:    sum.SessionID,
		Reps:         sum.Reps,
		Results:      sum.Results(),
		PeakVelocity: sum.PeakVelocity,
		Samples:      sum.Samples,
		Rejected:     sum.Rejected,
		Error:        sum.Error,
	})
}

func (s *liveState) handleCharts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	sum, ok := s.summary, s.haveSummary
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "no session finished yet", http.StatusServiceUnavailable)
		return
	}
	if sum.Failed() {
		http.Error(w, "session failed: "+sum.Error, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderCharts(w, sum); err != nil {
		log.Printf("web: render charts: %v", err)
	}
}

func (s *liveState) handleWS(w http.ResponseWriter, r *http.Request) {
	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.mu.RLock()
	status, haveStatus := s.status, s.haveStatus
	s.mu.RUnlock()
	if haveStatus {
		if err := conn.WriteJSON(wsMessage{Type: "status", Data: status}); err != nil {
			return
		}
	}

	// The reader only detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// controlHandler accepts POST {"action":"start"|"stop"} and forwards it.
func controlHandler(publish func(ControlMessage) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var msg ControlMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if msg.Action != ActionStart && msg.Action != ActionStop {
			http.Error(w, fmt.Sprintf("unknown action %q", msg.Action), http.StatusBadRequest)
			return
		}
		if err := publish(msg); err != nil {
			log.Printf("web: control: %v", err)
			http.Error(w, "control publish failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *liveState) routes(control http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/reps", s.handleReps)
	mux.HandleFunc("/api/control", control)
	mux.HandleFunc("/charts", s.handleCharts)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// RunWeb serves the recorder output over HTTP and a websocket.
func RunWeb() error {
	cfg := config.Get()
	state := newLiveState()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicStatus, state.setStatus); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicTelemetry, state.setTelemetry); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicSummary, state.setSummary); err != nil {
		return err
	}

	mux := state.routes(controlHandler(func(m ControlMessage) error {
		return publishJSON(client, cfg.TopicControl, 1, false, m)
	}))
	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
