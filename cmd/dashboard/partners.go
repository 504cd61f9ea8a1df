package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/partners"
)

// partnersPath is the partner registry endpoint, relative to API_BASE_URL.
const partnersPath = "/partners"

const msgAdminRequired = "Admin access required"

func newPartnersCmd(factory appFactory) *cobra.Command {
	partnersCmd := &cobra.Command{
		Use:   "partners",
		Short: "Manage partner credentials",
	}
	partnersCmd.AddCommand(newPartnersIssueCmd(factory))
	return partnersCmd
}

func newPartnersIssueCmd(factory appFactory) *cobra.Command {
	var scopes []string
	cmd := &cobra.Command{
		Use:   "issue <application>",
		Short: "Generate a client id, client secret and webhook secret for a partner application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				if !a.controller.IsAuthenticated(ctx) || !a.controller.Profile().IsAdmin() {
					return autherrors.AuthFailure(msgAdminRequired, http.StatusForbidden, nil)
				}

				var (
					bundle *partners.Bundle
					err    error
				)
				if a.cfg.GetEnableMockAPI() {
					bundle, err = partners.Generate(args[0], a.cfg.GetPartnerBaseURL())
				} else {
					bundle, err = requestBundle(ctx, a, args[0], scopes)
				}
				if err != nil {
					return err
				}
				return printBundle(cmd.OutOrStdout(), bundle)
			})
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scopes granted to the partner (remote API only)")
	return cmd
}

// requestBundle asks the remote API to mint and register the bundle with the
// stored admin session as the bearer.
func requestBundle(ctx context.Context, a *app, application string, scopes []string) (*partners.Bundle, error) {
	sess, err := a.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{"application": application, "scopes": scopes})
	if err != nil {
		return nil, errors.Wrap(err, "[requestBundle] encoding request")
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.GetAPITimeout())
	defer cancel()

	url := strings.TrimRight(a.cfg.GetAPIBaseURL(), "/") + partnersPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[requestBundle] building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, autherrors.Transport(err.Error(), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
		if payload.Message == "" {
			payload.Message = http.StatusText(resp.StatusCode)
		}
		log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("partner request rejected")
		return nil, autherrors.AuthFailure(payload.Message, resp.StatusCode, nil)
	}

	var bundle partners.Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, autherrors.Transport("Failed to parse response", resp.StatusCode, err)
	}
	return &bundle, nil
}

func printBundle(w io.Writer, bundle *partners.Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return err
	}
	fmt.Fprintln(w, "Store these secrets now. They are not shown again.")
	return nil
}
