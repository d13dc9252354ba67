package errors

// Error code constants returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden  = "AUTHZ_FORBIDDEN"
	AuthzMasterOnly = "AUTHZ_MASTER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Groups (GROUP_) ====================
	GroupNotFound           = "GROUP_NOT_FOUND"
	GroupAlreadyJoined      = "GROUP_ALREADY_JOINED"
	GroupCannotRemoveMaster = "GROUP_CANNOT_REMOVE_MASTER"

	// ==================== Join requests (REQUEST_) ====================
	RequestNotFound       = "REQUEST_NOT_FOUND"
	RequestAlreadyExists  = "REQUEST_ALREADY_EXISTS"
	RequestMasterRequired = "REQUEST_MASTER_REQUIRED"

	// ==================== Password reset (RESET_) ====================
	ResetTokenInvalid = "RESET_TOKEN_INVALID"
	ResetTokenExpired = "RESET_TOKEN_EXPIRED"

	// ==================== Rate limiting (RATE_) ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
