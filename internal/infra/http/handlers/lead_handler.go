package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/usecase"
)

// StreamMetrics conta os streams abertos do painel.
type StreamMetrics interface {
	StreamOpened()
	StreamClosed()
}

type LeadHandler struct {
	Leads   usecase.LeadLister
	Feed    *usecase.LeadFeed
	Metrics StreamMetrics
}

func NewLeadHandler(leads usecase.LeadLister, feed *usecase.LeadFeed, metrics StreamMetrics) *LeadHandler {
	return &LeadHandler{Leads: leads, Feed: feed, Metrics: metrics}
}

type LeadListResponse struct {
	Leads []*entity.Lead `json:"leads"`
	Total int            `json:"total"`
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.List(r.Context())
	if err != nil {
		log.Printf("❌ Erro ao listar leads: %v", err)
		writeErrorResponse(w, http.StatusInternalServerError, "LEADS_UNAVAILABLE", "Erro ao carregar dados")
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	writeJSON(w, http.StatusOK, LeadListResponse{Leads: leads, Total: len(leads)})
}

// Stream envia a lista completa de leads como server-sent events a cada mudança.
func (h *LeadHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "Streaming não suportado")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if h.Metrics != nil {
		h.Metrics.StreamOpened()
		defer h.Metrics.StreamClosed()
	}

	sub := h.Feed.Subscribe(r.Context())
	defer sub.Cancel()

	for leads := range sub.Snapshots {
		if leads == nil {
			leads = []*entity.Lead{}
		}
		if err := writeEvent(w, "leads", LeadListResponse{Leads: leads, Total: len(leads)}); err != nil {
			return
		}
		flusher.Flush()
	}

	if err, ok := <-sub.Errors; ok && err != nil {
		_ = writeEvent(w, "error", ErrorResponse{Error: "LEADS_UNAVAILABLE", Message: "Erro ao carregar dados"})
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
