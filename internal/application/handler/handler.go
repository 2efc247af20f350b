package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
	"github.com/LeonVreling/oms-statutory/internal/application/service"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
	"github.com/LeonVreling/oms-statutory/pkg/platform/httputil"
)

// Handler is the thin HTTP layer over the visibility engine.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/events/{eventID}/applications/{view}", h.projectView)
	r.Put("/memberslists/{bodyID}", h.putMembersList)
}

func (h *Handler) projectView(w http.ResponseWriter, r *http.Request) {
	rawEventID := chi.URLParam(r, "eventID")
	eventID, err := strconv.ParseInt(rawEventID, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event id must be numeric"))
		return
	}

	out, err := h.svc.Project(r.Context(), domain.EventID(eventID), chi.URLParam(r, "view"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) putMembersList(w http.ResponseWriter, r *http.Request) {
	bodyID, err := strconv.ParseInt(chi.URLParam(r, "bodyID"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "body id must be numeric"))
		return
	}

	var list models.MembersList
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	list.BodyID = domain.BodyID(bodyID)

	if err := h.svc.RegisterMembersList(r.Context(), &list); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": list})
}
