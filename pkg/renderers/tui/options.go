package tui

// OutputFormat controls how a filled instruction is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the filled instruction as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits one "name = value" line per element.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Choice is a selectable value with a display label.
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Wallet carries the multisig context that wallet-bound widgets read:
// the proposer, the multisig and its treasury, plus the owner and account
// lists offered by the option widgets.
type Wallet struct {
	Proposer string
	Multisig string
	Treasury string
	Owners   []Choice
	Accounts []Choice
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithWallet supplies the multisig context.
func WithWallet(wallet Wallet) Option {
	return func(r *Renderer) {
		r.wallet = wallet
	}
}
