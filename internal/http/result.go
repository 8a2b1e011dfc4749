package httpapi

// Result is the JSON envelope the front end consumes.
// - code: 2000 on success
// - type: 'success' | 'error'
// - message: user-facing text (Spanish for form/auth errors)
// - result: payload
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailFields shapes field-level validation errors so forms can render
// inline messages.
func FailFields(message string, fields map[string]string) Result[map[string]string] {
	return Result[map[string]string]{Code: ResultError, Type: "error", Message: message, Result: fields}
}
