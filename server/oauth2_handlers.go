package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/oauth2"
)

// Token handles the client credentials grant for partner applications.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenReq, err := oauth2.ParseTokenRequest(r)
		if err != nil {
			writeOAuthError(w, oauth2.ErrorInvalidRequest, "Failed to parse form data", http.StatusBadRequest)
			return
		}
		if tokenReq.GrantType != oauth2.ClientCredentialsGrant {
			writeOAuthError(w, oauth2.ErrorUnsupportedGrantType, "only client_credentials is supported", http.StatusBadRequest)
			return
		}
		if tokenReq.ClientID == "" || tokenReq.ClientSecret == "" {
			writeOAuthError(w, oauth2.ErrorInvalidClient, "Client authentication required", http.StatusUnauthorized)
			return
		}

		partner, err := s.repos.Partners.Get(tokenReq.ClientID)
		if err != nil || partner == nil || !partner.Authenticate(tokenReq.ClientSecret) {
			log.Debug().Str("client_id", tokenReq.ClientID).Msg("client authentication failed")
			writeOAuthError(w, oauth2.ErrorInvalidClient, "Client authentication failed", http.StatusUnauthorized)
			return
		}

		scope := tokenReq.Scope
		if scope == "" {
			scope = strings.Join(partner.Scopes, " ")
		} else if err := partner.ValidateScopes(scope); err != nil {
			writeOAuthError(w, oauth2.ErrorInvalidScope, err.Error(), http.StatusBadRequest)
			return
		}

		accessToken, err := s.tokens.IssueClient(partner.ClientID, scope)
		if err != nil {
			log.Err(err).Msg("issuing client token")
			writeOAuthError(w, "server_error", "could not issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, oauth2.TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.tokens.ClientExpiry().Seconds()),
			Scope:       scope,
		})
	}
}
