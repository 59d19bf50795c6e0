package httputil

// Machine-readable error codes returned alongside human-readable messages.
// Clients branch on these instead of parsing message text.
const (
	CodeInvalidRequestBody  = "invalid_request_body"
	CodeValidationFailed    = "validation_failed"
	CodeUserAlreadyExists   = "user_already_exists"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeInvalidOTP          = "invalid_or_expired_otp"
	CodeEmailDispatchFailed = "email_dispatch_failed"
	CodeGoogleNotConfigured = "google_not_configured"
	CodeInvalidGoogleToken  = "invalid_google_token"
	CodeMissingAuth         = "missing_authentication"
	CodeInvalidAuthHeader   = "invalid_authorization_header"
	CodeInvalidToken        = "invalid_token"
	CodeTokenExpired        = "token_expired"
	CodeNoteNotFound        = "note_not_found"
	CodeInternalError       = "internal_error"
)
