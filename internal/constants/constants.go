package constants

const (
	// ContextKeyUserID is the key under which the authenticated user ID is
	// stored in both the session and the gin context.
	ContextKeyUserID = "user_id"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "taskflow_session"

	// MinPasswordLength is the minimum accepted password length at signup.
	MinPasswordLength = 8

	// BcryptCost is the bcrypt cost factor used for password hashing.
	BcryptCost = 10

	// PositionStep is the gap between task positions within a project.
	// Leaving room between positions lets tasks be inserted between
	// existing ones later without renumbering.
	PositionStep = 1000
)
