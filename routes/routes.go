// Package routes decides where a request for a dashboard path ends up,
// given who (if anyone) is signed in.
package routes

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-identity-dashboard/users"
)

const (
	RouteRoot     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"

	RouteUser       = "/user"
	RouteUserWallet = "/user/wallet"
	RouteUserHealth = "/user/health"
	RouteUserIPFS   = "/user/ipfs"

	RouteAdmin            = "/admin"
	RouteAdminVCWallet    = "/admin/vc-wallet"
	RouteAdminAuditLogs   = "/admin/audit-logs"
	RouteAdminDIDApproval = "/admin/did-approval"
)

// NavItem is one entry of a role's navigation menu.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

var (
	UserNav = []NavItem{
		{Label: "Decentralized Identity Wallet", Path: RouteUserWallet, Icon: "🔐"},
		{Label: "Identity Health Score", Path: RouteUserHealth, Icon: "🧭"},
		{Label: "IPFS Integration", Path: RouteUserIPFS, Icon: "🗂️"},
	}

	AdminNav = []NavItem{
		{Label: "VC Wallet", Path: RouteAdminVCWallet, Icon: "🪙"},
		{Label: "Transparent Audit Logs", Path: RouteAdminAuditLogs, Icon: "📜"},
		{Label: "DID Approval API", Path: RouteAdminDIDApproval, Icon: "🔗"},
	}
)

// NavFor returns a copy of the menu for role, nil for an unknown role.
func NavFor(role users.RoleType) []NavItem {
	switch role {
	case users.RoleAdmin:
		return append([]NavItem(nil), AdminNav...)
	case users.RoleUser:
		return append([]NavItem(nil), UserNav...)
	}
	return nil
}

// LandingPath is where a role is sent right after signing in.
func LandingPath(role users.RoleType) string {
	switch role {
	case users.RoleAdmin:
		return RouteAdminVCWallet
	case users.RoleUser:
		return RouteUserWallet
	}
	return RouteLogin
}

// Authenticator is the part of the session controller the guard needs.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	Profile() *users.Profile
}

// Guard resolves requested paths to the path that should actually be shown.
type Guard struct {
	auth Authenticator
}

func NewGuard(auth Authenticator) *Guard {
	return &Guard{auth: auth}
}

// Resolve returns path itself when it may be shown, otherwise the redirect
// target. Anything unrecognised goes to the login page.
func (g *Guard) Resolve(ctx context.Context, path string) string {
	path = clean(path)

	switch path {
	case RouteLogin, RouteRegister:
		return path
	case RouteRoot:
		return RouteLogin
	}

	required, ok := protected(path)
	if !ok {
		return RouteLogin
	}

	if g.auth == nil || !g.auth.IsAuthenticated(ctx) {
		return RouteLogin
	}
	profile := g.auth.Profile()
	if profile == nil {
		return RouteLogin
	}
	if profile.Role != required {
		return LandingPath(profile.Role)
	}

	switch path {
	case RouteUser, RouteAdmin:
		return LandingPath(required)
	}
	return path
}

// protected reports the role a path belongs to.
func protected(path string) (users.RoleType, bool) {
	if path == RouteUser {
		return users.RoleUser, true
	}
	if path == RouteAdmin {
		return users.RoleAdmin, true
	}
	for _, item := range UserNav {
		if item.Path == path {
			return users.RoleUser, true
		}
	}
	for _, item := range AdminNav {
		if item.Path == path {
			return users.RoleAdmin, true
		}
	}
	return "", false
}

func clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return RouteRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = RouteRoot
		}
	}
	return path
}
