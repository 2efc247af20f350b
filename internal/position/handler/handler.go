package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LeonVreling/oms-statutory/internal/position/models"
	"github.com/LeonVreling/oms-statutory/internal/position/service"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
	"github.com/LeonVreling/oms-statutory/pkg/platform/httputil"
	"github.com/LeonVreling/oms-statutory/pkg/requestcontext"
)

// Handler is the thin HTTP layer over the position lifecycle engine.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/events/{eventID}/positions", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{positionID}", h.get)
		r.Put("/{positionID}", h.update)
		r.Put("/{positionID}/status", h.setStatus)
		r.Post("/{positionID}/candidates", h.addCandidate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	positions, err := h.svc.List(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": positions})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in models.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	p, err := h.svc.Create(r.Context(), eventID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": p})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	eventID, positionID, err := positionParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.svc.Get(r.Context(), eventID, positionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	eventID, positionID, err := positionParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// An empty body is a valid no-op mutation; the record is re-saved with
	// its engine-derived status.
	var in models.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	p, err := h.svc.Update(r.Context(), eventID, positionID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	eventID, positionID, err := positionParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	p, err := h.svc.SetStatus(r.Context(), eventID, positionID, body.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) addCandidate(w http.ResponseWriter, r *http.Request) {
	eventID, positionID, err := positionParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	userID := requestcontext.UserID(r.Context())
	c, err := h.svc.AddCandidate(r.Context(), eventID, positionID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": c})
}

// Route ids must be numeric before they reach the engine; anything else is a
// malformed request, not a not-found.
func eventIDParam(r *http.Request) (domain.EventID, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "event id must be numeric")
	}
	return domain.EventID(id), nil
}

func positionParams(r *http.Request) (domain.EventID, domain.PositionID, error) {
	eventID, err := eventIDParam(r)
	if err != nil {
		return 0, 0, err
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
	if err != nil {
		return 0, 0, dErrors.New(dErrors.CodeBadRequest, "position id must be numeric")
	}
	return eventID, domain.PositionID(id), nil
}
