package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/dsx-leads/internal/usecase"
)

const WizardCookieName = "dsx_wizard"

type WizardHandler struct {
	UC            *usecase.RegisterLeadUseCase
	SessionTTL    time.Duration
	SecureCookies bool
}

func NewWizardHandler(uc *usecase.RegisterLeadUseCase, ttl time.Duration, secure bool) *WizardHandler {
	return &WizardHandler{UC: uc, SessionTTL: ttl, SecureCookies: secure}
}

type valueRequest struct {
	Value string `json:"value"`
}

type jumpRequest struct {
	Step *int `json:"step"`
}

func (h *WizardHandler) Routes(r chi.Router) {
	r.Post("/registro/sessions", h.Start)
	r.Route("/registro/session", func(r chi.Router) {
		r.Get("/", h.View)
		r.Put("/input", h.Input)
		r.Post("/next", h.Next)
		r.Post("/select", h.Select)
		r.Post("/prev", h.Prev)
		r.Post("/forward", h.Forward)
		r.Post("/jump", h.Jump)
	})
}

func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	out, err := h.UC.Start(r.Context())
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     WizardCookieName,
		Value:    out.SessionID,
		Path:     "/registro",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, out)
}

func (h *WizardHandler) View(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.View(r.Context(), id)
	})
}

func (h *WizardHandler) Input(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.Input(r.Context(), id, req.Value)
	})
}

func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.Next(r.Context(), id)
	})
}

func (h *WizardHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.Select(r.Context(), id, req.Value)
	})
}

func (h *WizardHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.Back(r.Context(), id)
	})
}

func (h *WizardHandler) Forward(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.Forward(r.Context(), id)
	})
}

func (h *WizardHandler) Jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Step == nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Informe o passo de destino")
		return
	}
	h.run(w, r, func(id string) (*usecase.WizardOutput, error) {
		return h.UC.JumpTo(r.Context(), id, *req.Step)
	})
}

func (h *WizardHandler) run(w http.ResponseWriter, r *http.Request, fn func(id string) (*usecase.WizardOutput, error)) {
	c, err := r.Cookie(WizardCookieName)
	if err != nil || c.Value == "" {
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeSessionNotFound, "Sessão de registro não encontrada ou expirada.")
		return
	}

	out, err := fn(c.Value)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	status := http.StatusOK
	if out.Status == usecase.StatusInvalid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

type ThankYouResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func ThankYou(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThankYouResponse{
		Title:   "Obrigado!",
		Message: "Você está oficialmente participando do sorteio do par de ingressos.",
	})
}
