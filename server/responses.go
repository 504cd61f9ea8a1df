package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/oauth2"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	msgInvalidBody         = "Invalid request body"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidRegistration = "Invalid registration data"
	msgUserExists          = "User already exists"
	msgUnauthorized        = "Unauthorized"
	msgForbidden           = "Admin access required"
)

// messageResponse is the error body of every non-OAuth endpoint
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("writing response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeOAuthError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Cache-Control", "no-store")
	if errorCode == oauth2.ErrorInvalidClient {
		w.Header().Set("WWW-Authenticate", `Basic realm="partner-api"`)
	}
	writeJSON(w, statusCode, oauth2.ErrorResponse{Error: errorCode, ErrorDescription: description})
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
