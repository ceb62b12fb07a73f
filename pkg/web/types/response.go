package types

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes data as a JSON response with statusCode.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteError writes errResp with the status derived from its type.
func WriteError(w http.ResponseWriter, errResp *ErrorResponse) error {
	return WriteJSON(w, errResp.Error.HTTPStatusCode(), errResp)
}
