package handler

import (
	"context"
	"net/http"
)

// Streamer starts and stops the simulation cycles.
// *engine.Scheduler implements it.
type Streamer interface {
	Start(ctx context.Context) bool
	Stop()
	Running() bool
}

// StreamingHandler exposes scheduler control.
type StreamingHandler struct {
	streamer Streamer
	ctx      context.Context
}

// NewStreamingHandler creates a StreamingHandler. Cycles started through it
// stop when ctx is cancelled.
func NewStreamingHandler(ctx context.Context, streamer Streamer) *StreamingHandler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &StreamingHandler{streamer: streamer, ctx: ctx}
}

type streamingResponse struct {
	Running bool `json:"running"`
	Changed bool `json:"changed"`
}

// Status handles GET /streaming.
func (h *StreamingHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, streamingResponse{Running: h.streamer.Running()})
}

// Start handles POST /streaming/start. Starting a running scheduler is a no-op.
func (h *StreamingHandler) Start(w http.ResponseWriter, r *http.Request) {
	changed := h.streamer.Start(h.ctx)
	WriteJSON(w, http.StatusOK, streamingResponse{Running: h.streamer.Running(), Changed: changed})
}

// Stop handles POST /streaming/stop. Stopping a stopped scheduler is a no-op.
func (h *StreamingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	wasRunning := h.streamer.Running()
	h.streamer.Stop()
	WriteJSON(w, http.StatusOK, streamingResponse{Running: h.streamer.Running(), Changed: wasRunning})
}
