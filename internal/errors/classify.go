package errors

// Classification is the result of inspecting an arbitrary error value.
// Known is false for anything that was not constructed by this package;
// such values must be logged in full and masked before display.
type Classification struct {
	Known       bool
	Operational bool
	Err         *AppError
}

// Classify determines whether err is a taxonomy variant. It never fails:
// nil and foreign error values report Known false.
func Classify(err error) Classification {
	var appErr *AppError
	if err == nil || !As(err, &appErr) {
		return Classification{}
	}
	return Classification{
		Known:       true,
		Operational: appErr.Operational,
		Err:         appErr,
	}
}

// FromCode reconstructs a taxonomy variant from an error description that
// arrived over a remote boundary. Unrecognized codes produce an Api variant
// carrying the given status so no remote failure is silently reclassified.
func FromCode(code ErrorCode, message string, statusCode int) *AppError {
	if !KnownCode(code) {
		return NewAPI(message, statusCode, nil)
	}
	if code == CodeAPI {
		return NewAPI(message, statusCode, nil)
	}
	return newError(code, message, nil)
}
