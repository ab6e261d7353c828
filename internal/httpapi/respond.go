package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	logx "github.com/echo-shopbot/server/pkg/logger"
)

// apiResponse is the common success wrapper: {success, message, data}.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return fmt.Errorf("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message, detail string) {
	if status >= http.StatusInternalServerError {
		logx.Error().Str("message", message).Str("detail", detail).Msg("request failed")
	}
	respondJSON(w, status, errorResponse{Success: false, Message: message, Error: detail})
}
