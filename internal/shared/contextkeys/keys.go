package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "edwin context key " + string(c)
}

const (
	// UserIDKey holds the authenticated user's hex ObjectID.
	UserIDKey = contextKey("userID")
	// UserEmailKey holds the authenticated user's email.
	UserEmailKey = contextKey("userEmail")
	// UserRoleKey holds the platform role ("user" or "admin").
	UserRoleKey = contextKey("userRole")
	// RequestIDKey holds the X-Request-ID of the current request.
	RequestIDKey = contextKey("requestID")
	// WorkspaceIDKey holds the workspace a request operates on, when known.
	WorkspaceIDKey = contextKey("workspaceID")
	// ComponentKey tags log lines with the emitting component.
	ComponentKey = contextKey("component")
	// OperationKey tags log lines with the running operation.
	OperationKey = contextKey("operation")
)
