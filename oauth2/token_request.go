// Package oauth2 holds the wire types of the partner token endpoint.
package oauth2

import (
	"net/http"
	"net/url"
	"strings"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// ClientCredentialsGrant is machine-to-machine authentication with a
	// partner's client ID and secret. Only an access token is returned.
	ClientCredentialsGrant GrantType = "client_credentials"
)

// Error codes from RFC 6749 §5.2.
const (
	ErrorInvalidRequest       = "invalid_request"
	ErrorInvalidClient        = "invalid_client"
	ErrorInvalidScope         = "invalid_scope"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
)

// TokenRequest holds the parameters of a token request.
type TokenRequest struct {
	GrantType GrantType

	// ClientID and ClientSecret come from HTTP basic auth when present,
	// otherwise from the form body.
	ClientID     string
	ClientSecret string

	// Scope is the space separated list of requested scopes, may be empty.
	Scope string
}

// ParseTokenRequest reads a token request from a form encoded POST.
func ParseTokenRequest(r *http.Request) (*TokenRequest, error) {
	err := r.ParseForm()
	if err != nil {
		return nil, err
	}
	req := &TokenRequest{
		GrantType: GrantType(r.PostForm.Get("grant_type")),
		Scope:     strings.TrimSpace(r.PostForm.Get("scope")),
	}
	if id, secret, ok := r.BasicAuth(); ok {
		// RFC 6749 §2.3.1 form-encodes both values before basic auth
		if req.ClientID, err = url.QueryUnescape(id); err != nil {
			return nil, err
		}
		if req.ClientSecret, err = url.QueryUnescape(secret); err != nil {
			return nil, err
		}
	} else {
		req.ClientID = r.PostForm.Get("client_id")
		req.ClientSecret = r.PostForm.Get("client_secret")
	}
	return req, nil
}
