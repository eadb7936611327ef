package server

// Route path constants
// All dashboard routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Guest Routes
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"
	RoutePasswordReset  = "/password-reset"

	// Protected Routes
	RouteCampaigns         = "/adcampaigns"
	RouteCampaignCreate    = "/adcampaign/create"
	RouteCampaignLocations = "/adcampaign/locations"
	RouteProfile           = "/profile"
	RouteLogout            = "/logout"

	// Session change feed (WebSocket)
	RouteSessionEvents = "/session/events"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/*"
)
