package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError matches the body shape produced by pkg/http.WriteError so
// clients see one error format whether a handler or a middleware rejected
// the request.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
