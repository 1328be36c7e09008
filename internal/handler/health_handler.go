package handler

import "net/http"

// Health never touches credentials or the spreadsheet.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
