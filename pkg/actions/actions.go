// Package actions holds the executors: narrow adapters that each wrap a
// single host-platform primitive. Executors take already-validated
// parameters, perform exactly one host call, and convert every platform
// failure into an Outcome. They never parse language and never panic
// across their boundary.
package actions

// Outcome is the uniform executor result.
type Outcome struct {
	Success bool
	Message string
}

func ok(message string) Outcome {
	return Outcome{Success: true, Message: message}
}

func failed(message string) Outcome {
	return Outcome{Success: false, Message: message}
}
