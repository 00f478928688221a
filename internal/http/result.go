package httpapi

// Result is the envelope every endpoint returns: a success flag, a
// human-readable message, and on success the created/updated data.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// FailWith carries the underlying error text alongside the message, for
// store faults where the original driver message matters to operators.
func FailWith(message string, err error) Result {
	return Result{Success: false, Message: message, Error: err.Error()}
}
