package common

// Route constants shared by the session guard and the HTTP layer.
const (
	// AdminPathPrefix marks every route that requires an admin session.
	AdminPathPrefix = "/admin"

	// LoginPath is excluded from the guard and is the redirect target for
	// unauthenticated requests.
	LoginPath = "/admin/login"
)
