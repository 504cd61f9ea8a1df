package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/issuer"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

const didPrefix = "DID:did:ppn:"

// LoginHandler exchanges credentials for a session token. The role in the
// request must match the account's role.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req issuer.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		email := users.NormalizeEmail(req.Email)

		user, err := s.repos.Users.GetByEmail(email)
		if err != nil || user == nil {
			log.Debug().Str("email", email).Msg("login for unknown email")
			writeMessage(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		if !users.CheckPasswordHash(req.Password, user.PasswordHash) || user.Role != req.Role {
			log.Debug().Str("email", email).Msg("login rejected")
			writeMessage(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}

		s.respondWithSession(w, http.StatusOK, user)
		if err := s.repos.Users.SetLastLogin(email); err != nil {
			log.Err(err).Str("email", email).Msg("recording last login")
		}
	}
}

// RegisterHandler creates an account and signs it in.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req issuer.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		email := users.NormalizeEmail(req.Email)
		name := strings.TrimSpace(req.Name)
		if users.ValidateEmail(email) != nil || users.ValidatePassword(req.Password) != nil || name == "" || !req.Role.Valid() {
			writeMessage(w, http.StatusBadRequest, msgInvalidRegistration)
			return
		}
		if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing != nil {
			writeMessage(w, http.StatusConflict, msgUserExists)
			return
		}

		user, err := s.newUser(email, name, req.Password, req.Role)
		if err != nil {
			log.Err(err).Msg("creating user")
			writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			if autherrors.Is(err, autherrors.ErrUserExists) {
				writeMessage(w, http.StatusConflict, msgUserExists)
				return
			}
			log.Err(err).Msg("storing user")
			writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		log.Info().Str("email", email).Stringer("role", req.Role).Msg("account registered")
		s.respondWithSession(w, http.StatusCreated, user)
	}
}

// MeHandler returns the profile behind the bearer token.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		user, err := s.repos.Users.GetByID(claims.Subject)
		if err != nil || user == nil {
			writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, user.Profile)
	}
}

// LogoutHandler revokes the bearer token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := r.Context().Value(ContextKeyRawToken).(string)
		if err := s.tokens.Revoke(raw); err != nil {
			log.Debug().Err(err).Msg("revoking token")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) respondWithSession(w http.ResponseWriter, status int, user *users.User) {
	signed, err := s.tokens.IssueSession(user.Profile)
	if err != nil {
		log.Err(err).Msg("issuing session token")
		writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeJSON(w, status, issuer.AuthResponse{Token: signed, User: user.Profile})
}

// newUser builds an account record. Admins are identified by email, users
// get a DID derived from their account ID.
func (s *Server) newUser(email, name, password string, role users.RoleType) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &users.User{
		Profile: users.Profile{
			ID:    uuid.New().String(),
			Email: email,
			Name:  name,
			Role:  role,
		},
		PasswordHash: hash,
		CreatedAt:    s.nowTime(),
	}
	if role == users.RoleAdmin {
		user.Identifier = email
	} else {
		user.Identifier = didPrefix + user.ID
	}
	return user, nil
}
