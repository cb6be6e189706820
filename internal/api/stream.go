package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devtrail/idea-engine/internal/cache"
	"github.com/devtrail/idea-engine/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamEvent is one message on the analyze progress stream
type StreamEvent struct {
	Type    string      `json:"type"`
	Stage   string      `json:"stage,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const streamReadTimeout = 30 * time.Second

// handleAnalyzeStream runs the analyze pipeline over a websocket. The
// client sends one AnalyzeCompanyRequest, the server streams stage events
// and finishes with a result or error event.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

	var req models.AnalyzeCompanyRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.sendStreamEvent(conn, StreamEvent{Type: "error", Code: "invalid_request", Message: "expected an analyze request as the first message"})
		return
	}

	if strings.TrimSpace(req.CompanyName) == "" {
		s.sendStreamEvent(conn, StreamEvent{Type: "error", Code: "validation_error", Message: "company_name is required"})
		return
	}

	slog.Info("analyze stream connected", "company", req.CompanyName)

	resp, err := s.runAnalysisPipeline(r, req, func(stage string) {
		s.sendStreamEvent(conn, StreamEvent{Type: "stage", Stage: stage})
	})
	if err != nil {
		s.metrics.upstreamFailures.Add(1)
		_, code, message := pipelineErrorStatus(err)
		slog.Error("analyze stream failed", "company", req.CompanyName, "error", err)
		s.sendStreamEvent(conn, StreamEvent{Type: "error", Code: code, Message: message})
		return
	}

	key := cache.Key(req.CompanyName)
	if err := s.cache.Set(r.Context(), key, resp); err != nil {
		slog.Warn("cache store failed", "key", key, "error", err)
	}
	s.persistAnalysis(r, req.CompanyName, resp)

	s.sendStreamEvent(conn, StreamEvent{Type: "stage", Stage: "done"})
	s.sendStreamEvent(conn, StreamEvent{Type: "result", Data: resp})
}

func (s *Server) sendStreamEvent(conn *websocket.Conn, event StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
