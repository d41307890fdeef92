package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrModelsExhausted is returned when every model/attempt combination
	// failed to produce a usable JSON object.
	ErrModelsExhausted = errors.New("all models failed to generate valid JSON")

	// ErrNoJSONFound is returned when the raw model output contains no
	// recoverable JSON object.
	ErrNoJSONFound = errors.New("no JSON object found in model output")

	// ErrUnknownProvider is returned when the catalog lists a provider
	// family no registered client can serve.
	ErrUnknownProvider = errors.New("no client registered for provider")

	// ErrInvalidConfig is returned when a dispatcher or client dependency
	// is missing or malformed at construction time.
	ErrInvalidConfig = errors.New("invalid generation configuration")

	// ErrContentBlocked is returned when a provider refuses to answer,
	// typically because safety filters rejected the prompt or the output.
	ErrContentBlocked = errors.New("content blocked by provider")

	// ErrInvalidResponse is returned when a provider answers with an
	// empty or structurally unusable response.
	ErrInvalidResponse = errors.New("invalid response from provider")

	// ErrTransientFailure is returned when a provider call failed after
	// exhausting its transport-level retries.
	ErrTransientFailure = errors.New("transient failure calling provider")
)
