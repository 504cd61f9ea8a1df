package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// APIPrefix is the path a dashboard's API_BASE_URL points at
	APIPrefix = "/api"

	// Auth Routes - the endpoints the dashboard's remote issuer talks to
	RouteAuthLogin    = APIPrefix + "/auth/login"
	RouteAuthRegister = APIPrefix + "/auth/register"
	RouteAuthMe       = APIPrefix + "/auth/me"
	RouteAuthLogout   = APIPrefix + "/auth/logout"

	// Admin API Routes
	RoutePartners = APIPrefix + "/partners"

	// OAuth2 Routes
	RouteOAuth2Token = "/oauth2/token"

	RouteHealth = "/healthz"
)
