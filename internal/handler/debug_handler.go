package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/parisxmas/intake-relay/internal/sheets"
)

type AuthProber interface {
	Probe(ctx context.Context) (sheets.Probe, error)
}

type DebugHandler struct {
	prober AuthProber
	logger *zap.Logger
}

func NewDebugHandler(prober AuthProber, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{prober: prober, logger: logger}
}

// Auth handles GET /_debug/auth: it forces the token exchange and reports
// the identity and spreadsheet in use. No row is written.
func (h *DebugHandler) Auth(w http.ResponseWriter, r *http.Request) {
	p, err := h.prober.Probe(r.Context())
	if err != nil {
		h.logger.Error("auth debug failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"email":       nullable(p.Email),
		"sheetId":     nullable(p.SpreadsheetID),
		"tokenSample": p.TokenSample,
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
