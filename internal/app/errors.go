package app

type ErrorCode string

const (
	ErrCodeInvalidFilter ErrorCode = "INVALID_FILTER"
	ErrCodeNoProject     ErrorCode = "NO_PROJECT_SELECTED"
)

// RequestError reports a malformed use-case request.
type RequestError struct {
	Code    ErrorCode
	Message string
}

func (e *RequestError) Error() string {
	return string(e.Code) + ": " + e.Message
}
