package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-identity-dashboard/auth"
	"github.com/jrsteele09/go-identity-dashboard/internal/config"
	"github.com/jrsteele09/go-identity-dashboard/issuer"
	"github.com/jrsteele09/go-identity-dashboard/routes"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

func newRootCmd(factory appFactory) *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Sign in to the identity dashboard and inspect the current session",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			return config.LoadEnvFiles(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "additional .env file to load before reading configuration")

	rootCmd.AddCommand(
		newLoginCmd(factory),
		newRegisterCmd(factory),
		newLogoutCmd(factory),
		newStatusCmd(factory),
		newOpenCmd(factory),
		newWatchCmd(factory),
		newPartnersCmd(factory),
	)
	return rootCmd
}

// withApp builds the app, restores any persisted session and hands it to fn.
func withApp(cmd *cobra.Command, factory appFactory, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := factory(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.controller.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

type credentialFlags struct {
	email    string
	password string
	role     string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password, read from stdin when empty")
	cmd.Flags().StringVar(&f.role, "role", string(users.RoleUser), "dashboard role (user or admin)")
}

// validate applies the sign-in form rules and returns the normalised email
// and role. A missing password is read from in.
func (f *credentialFlags) validate(in io.Reader) (string, users.RoleType, error) {
	if f.password == "" {
		f.password = readLine(in)
	}
	role, _ := users.ParseRole(f.role)
	email, err := auth.ValidateLoginForm(f.email, f.password, role)
	if err != nil {
		return "", "", err
	}
	return email, role, nil
}

func newLoginCmd(factory appFactory) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, role, err := creds.validate(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				profile, err := a.controller.Login(ctx, email, creds.password, role)
				if err != nil {
					return err
				}
				printSignedIn(cmd.OutOrStdout(), profile)
				return nil
			})
		},
	}
	creds.register(cmd)
	return cmd
}

func newRegisterCmd(factory appFactory) *cobra.Command {
	var (
		creds credentialFlags
		name  string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, role, err := creds.validate(cmd.InOrStdin())
			if err != nil {
				return err
			}
			req := issuer.RegisterRequest{
				Email:    email,
				Password: creds.password,
				Name:     strings.TrimSpace(name),
				Role:     role,
			}
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				profile, err := a.controller.Register(ctx, req)
				if err != nil {
					return err
				}
				printSignedIn(cmd.OutOrStdout(), profile)
				return nil
			})
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func newLogoutCmd(factory appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				if err := a.controller.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newStatusCmd(factory appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session and the navigation it unlocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if !a.controller.IsAuthenticated(ctx) {
					fmt.Fprintln(out, "Not signed in")
					return nil
				}
				profile := a.controller.Profile()
				printProfile(out, profile)
				fmt.Fprintln(out, "Navigation:")
				for _, item := range routes.NavFor(profile.Role) {
					fmt.Fprintf(out, "  %-22s %s\n", item.Label, item.Path)
				}
				return nil
			})
		},
	}
}

func newOpenCmd(factory appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a dashboard path against the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				resolved := a.guard.Resolve(ctx, args[0])
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, resolved)
				if resolved != args[0] {
					fmt.Fprintf(out, "(redirected from %s)\n", args[0])
				}
				return nil
			})
		},
	}
}

func newWatchCmd(factory appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the session state whenever another process changes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, factory, func(ctx context.Context, a *app) error {
				if a.watcher == nil {
					return errors.Errorf("session backend %q cannot be watched", a.cfg.GetSessionBackend())
				}
				out := cmd.OutOrStdout()
				printSnapshot(out, a.controller.Snapshot())
				unsubscribe := a.controller.Subscribe(func(snap auth.Snapshot) {
					printSnapshot(out, snap)
				})
				defer unsubscribe()

				err := a.controller.Follow(ctx, a.watcher)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

func printSignedIn(w io.Writer, profile *users.Profile) {
	printProfile(w, profile)
	fmt.Fprintf(w, "Landing: %s\n", routes.LandingPath(profile.Role))
}

func printProfile(w io.Writer, profile *users.Profile) {
	fmt.Fprintf(w, "Signed in as %s <%s> (%s)\n", profile.Name, profile.Email, profile.Role)
	if profile.Identifier != "" {
		fmt.Fprintf(w, "Identifier: %s\n", profile.Identifier)
	}
}

func printSnapshot(w io.Writer, snap auth.Snapshot) {
	if !snap.Authenticated() || snap.Profile == nil {
		fmt.Fprintf(w, "%s\n", snap.State)
		return
	}
	fmt.Fprintf(w, "%s: %s <%s> (%s)\n", snap.State, snap.Profile.Name, snap.Profile.Email, snap.Profile.Role)
}

func readLine(in io.Reader) string {
	if in == nil {
		return ""
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
