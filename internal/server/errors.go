package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"paketomat/internal/portal"
)

// ErrorResponse is the JSON body of every failed API request
type ErrorResponse struct {
	Error string           `json:"error"`
	Kind  portal.ErrorKind `json:"kind,omitempty"`

	// CustomerNumber is set when a parcel failed after its recipient was registered
	CustomerNumber int `json:"customer_number,omitempty"`
}

// statusForError maps portal failures to HTTP status codes
func statusForError(err error) int {
	switch portal.KindOf(err) {
	case portal.KindDuplicateRecipient:
		return http.StatusConflict
	case portal.KindNoRoute:
		return http.StatusUnprocessableEntity
	case portal.KindAuthenticationFailed:
		return http.StatusUnauthorized
	case portal.KindExtraction, portal.KindUnexpectedResponse:
		return http.StatusBadGateway
	case portal.KindTransport:
		return http.StatusGatewayTimeout
	case portal.KindEncoding:
		return http.StatusBadRequest
	}
	if errors.Is(err, errRequestCancelled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var errRequestCancelled = errors.New("request cancelled while waiting for the portal session")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string, kind portal.ErrorKind) {
	writeJSON(w, status, ErrorResponse{Error: message, Kind: kind})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), err.Error(), portal.KindOf(err))
}
