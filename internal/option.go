package internal

import "io"

// Mode selects what Run does.
type Mode string

// Run modes.
const (
	ModeConvert Mode = "convert"
	ModeServe   Mode = "serve"
	ModeMCP     Mode = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	mode    Mode
	out     io.Writer
	logOut  io.Writer
	version string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode sets the run mode; the default is ModeConvert.
func WithMode(m Mode) Option {
	return func(a *application) {
		a.mode = m
	}
}

// WithOutput sets where run summaries are printed; the default is stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithLogOutput sets where logs are written; the default is stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
