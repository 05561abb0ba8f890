package errors

// Stable error codes shared with API consumers. Remote error envelopes carry
// one of these strings, so renaming a code is a breaking change.
const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeAuthentication     ErrorCode = "AUTHENTICATION_ERROR"
	CodeAuthorization      ErrorCode = "AUTHORIZATION_ERROR"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabase           ErrorCode = "DATABASE_ERROR"
	CodeAPI                ErrorCode = "API_ERROR"
)

// Default HTTP-style status per code. Only CodeAPI may carry a
// caller-supplied status; every other code is fixed to its entry here.
var statusCodes = map[ErrorCode]int{
	CodeValidation:         400,
	CodeNotFound:           404,
	CodeAuthentication:     401,
	CodeAuthorization:      403,
	CodeConflict:           409,
	CodeServiceUnavailable: 503,
	CodeDatabase:           500,
	CodeAPI:                500,
}

// Default messages applied when a constructor is given an empty message.
var defaultMessages = map[ErrorCode]string{
	CodeValidation:         "Validation failed",
	CodeNotFound:           "Resource not found",
	CodeAuthentication:     "Authentication failed",
	CodeAuthorization:      "Insufficient permissions",
	CodeConflict:           "Resource conflict",
	CodeServiceUnavailable: "Service unavailable",
	CodeDatabase:           "Database operation failed",
	CodeAPI:                "Request failed",
}

// KnownCode reports whether code is part of the taxonomy.
func KnownCode(code ErrorCode) bool {
	_, ok := statusCodes[code]
	return ok
}

// StatusForCode returns the default status for a code, or 500 for codes
// outside the taxonomy.
func StatusForCode(code ErrorCode) int {
	if status, ok := statusCodes[code]; ok {
		return status
	}
	return 500
}

// GetErrorMessage returns the default message for a given error code.
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return string(code)
}
