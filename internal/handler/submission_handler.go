package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parisxmas/intake-relay/internal/service"
)

type SubmissionHandler struct {
	svc    *service.SubmissionService
	logger *zap.Logger
}

func NewSubmissionHandler(svc *service.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, logger: logger}
}

// Create handles POST /api/{kind}.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	payload := readPayload(r, h.logger)

	_, err := h.svc.Submit(r.Context(), kind, payload)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, service.ErrUnknownKind):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("submission failed", zap.String("kind", kind), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type schemaSummary struct {
	Kind     string   `json:"kind"`
	Tab      string   `json:"tab"`
	Columns  []string `json:"columns"`
	Required []string `json:"required"`
}

// Schemas handles GET /api/schemas.
func (h *SubmissionHandler) Schemas(w http.ResponseWriter, r *http.Request) {
	all := h.svc.Schemas()
	out := make([]schemaSummary, 0, len(all))
	for _, s := range all {
		cols := make([]string, 0, s.Width())
		cols = append(cols, "timestamp")
		for _, c := range s.Columns {
			cols = append(cols, c.Field)
		}
		out = append(out, schemaSummary{Kind: s.Kind, Tab: s.Tab, Columns: cols, Required: s.RequiredFields()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "schemas": out})
}
