package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API error envelope used by the admin handlers.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
