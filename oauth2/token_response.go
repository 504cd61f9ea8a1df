package oauth2

// TokenResponse is the body returned from the token endpoint (RFC 6749 §5.1).
type TokenResponse struct {
	// AccessToken is the signed JWT the partner sends as "Authorization: Bearer <access_token>".
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime of the access token in seconds. The
	// authoritative value is the JWT's exp claim.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the space separated list of scopes actually granted.
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the body of a failed token request (RFC 6749 §5.2).
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
