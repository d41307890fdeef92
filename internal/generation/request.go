package generation

// Default sampling parameters applied by NewRequest.
const (
	DefaultMaxTokens   = 2500
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
)

// Request carries one prompt and its sampling parameters to a model. It is
// a value object with no identity; the same Request may be retried against
// several models.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// NewRequest builds a Request for the prompt with the default sampling
// parameters.
func NewRequest(prompt string) Request {
	return Request{
		Prompt:      prompt,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}
