package commons

// Response is the envelope every service returns to the HTTP layer.
// Message carries the outcome phrase the controllers map onto status codes
// ("Insufficient balance", "OTP rejected", ...); Errors holds field-level
// detail for validation failures.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// AsError re-types an error envelope. The funds coordinator shares its
// confirm plumbing across payload types; only Message and Errors cross,
// Data never does.
func AsError[To any, From any](resp Response[From]) Response[To] {
	return Response[To]{
		Success: false,
		Message: resp.Message,
		Errors:  resp.Errors,
	}
}
