package types

// SuccessEnvelope wraps every 2xx payload under a single data key so clients
// decode one shape regardless of endpoint.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// NewSuccess builds the success envelope around a payload.
func NewSuccess(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// APIError is the public error body. Details carries field-level context and
// is populated only for codes that permit it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError under an error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewError builds the error envelope for a code and public message.
func NewError(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
