package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// readPayload decodes a JSON object body. A missing or malformed body is
// logged and yields an empty payload, which then fails validation.
func readPayload(r *http.Request, logger *zap.Logger) map[string]any {
	payload := map[string]any{}
	if r.Body == nil {
		return payload
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		if err != io.EOF {
			logger.Warn("unparsable request body", zap.String("path", r.URL.Path), zap.Error(err))
		}
		return map[string]any{}
	}
	if payload == nil {
		return map[string]any{}
	}
	return payload
}
