package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/users"
)

const DefaultAdminName = "Administrator"

// InitialiseSystem seeds the admin account named by ADMIN_EMAIL and
// ADMIN_PASSWORD. It does nothing when either is unset or the account
// already exists.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	email := users.NormalizeEmail(s.config.GetAdminEmail())
	password := s.config.GetAdminPassword()
	if email == "" || password == "" {
		log.Debug().Msg("bootstrap: no admin account configured")
		return nil
	}
	if err := users.ValidateEmail(email); err != nil {
		return fmt.Errorf("admin email: %w", err)
	}
	if err := users.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}

	if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing != nil {
		log.Info().Str("email", email).Msg("bootstrap: admin account already exists")
		return nil
	}

	admin, err := s.newUser(email, DefaultAdminName, password, users.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	if err := s.repos.Users.Upsert(admin); err != nil {
		return fmt.Errorf("failed to store admin: %w", err)
	}

	log.Info().Str("email", email).Str("id", admin.ID).Msg("bootstrap: created admin account")
	return nil
}
