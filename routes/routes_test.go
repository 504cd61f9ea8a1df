package routes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-identity-dashboard/routes"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

// staticAuth reports a fixed session
type staticAuth struct {
	authenticated bool
	profile       *users.Profile
}

func (s staticAuth) IsAuthenticated(context.Context) bool { return s.authenticated }
func (s staticAuth) Profile() *users.Profile              { return s.profile }

func TestLandingPath(t *testing.T) {
	require.Equal(t, "/admin/vc-wallet", routes.LandingPath(users.RoleAdmin))
	require.Equal(t, "/user/wallet", routes.LandingPath(users.RoleUser))
	require.Equal(t, "/login", routes.LandingPath("guest"))
}

func TestGuard_Resolve(t *testing.T) {
	anonymous := staticAuth{}
	user := staticAuth{authenticated: true, profile: &users.Profile{ID: "1", Role: users.RoleUser}}
	admin := staticAuth{authenticated: true, profile: &users.Profile{ID: "1", Role: users.RoleAdmin}}
	stale := staticAuth{authenticated: false, profile: &users.Profile{ID: "1", Role: users.RoleAdmin}}

	tests := []struct {
		name string
		auth routes.Authenticator
		path string
		want string
	}{
		{name: "root goes to login", auth: admin, path: "/", want: "/login"},
		{name: "empty path", auth: anonymous, path: "", want: "/login"},
		{name: "login passes", auth: anonymous, path: "/login", want: "/login"},
		{name: "register passes", auth: anonymous, path: "/register", want: "/register"},
		{name: "unknown path", auth: user, path: "/nowhere", want: "/login"},
		{name: "unknown nested path", auth: admin, path: "/admin/unknown", want: "/login"},
		{name: "anonymous protected", auth: anonymous, path: "/user/health", want: "/login"},
		{name: "stale session", auth: stale, path: "/admin/audit-logs", want: "/login"},
		{name: "user index", auth: user, path: "/user", want: "/user/wallet"},
		{name: "admin index", auth: admin, path: "/admin/", want: "/admin/vc-wallet"},
		{name: "user page", auth: user, path: "/user/ipfs", want: "/user/ipfs"},
		{name: "admin page", auth: admin, path: "/admin/did-approval", want: "/admin/did-approval"},
		{name: "query stripped", auth: admin, path: "/admin/audit-logs?page=2", want: "/admin/audit-logs"},
		{name: "user on admin page", auth: user, path: "/admin/vc-wallet", want: "/user/wallet"},
		{name: "admin on user page", auth: admin, path: "/user/health", want: "/admin/vc-wallet"},
		{name: "no profile", auth: staticAuth{authenticated: true}, path: "/user/wallet", want: "/login"},
		{name: "nil authenticator", auth: nil, path: "/user/wallet", want: "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := routes.NewGuard(tt.auth).Resolve(context.Background(), tt.path)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNavFor(t *testing.T) {
	nav := routes.NavFor(users.RoleUser)
	require.Len(t, nav, 3)
	require.Equal(t, routes.NavItem{Label: "Decentralized Identity Wallet", Path: "/user/wallet", Icon: "🔐"}, nav[0])

	nav[0].Label = "changed"
	require.Equal(t, "Decentralized Identity Wallet", routes.UserNav[0].Label)

	admin := routes.NavFor(users.RoleAdmin)
	require.Equal(t, []string{"/admin/vc-wallet", "/admin/audit-logs", "/admin/did-approval"},
		[]string{admin[0].Path, admin[1].Path, admin[2].Path})

	require.Nil(t, routes.NavFor(""))
}
