package apiclient

import (
	"net/http"
	"net/http/cookiejar"

	"github.com/startificial/requireflow/internal/logger"
)

// Config carries all pipeline behavior explicitly. Nothing in this package
// inspects the process environment at call time.
type Config struct {
	// BaseURL is prepended to path-only targets. Absolute targets are used
	// verbatim.
	BaseURL string

	// HTTPClient is the transport used for every call. Defaults to a plain
	// http.Client with no timeout; timeout policy belongs to the transport.
	HTTPClient *http.Client

	// Credentials enables ambient cookie handling on the transport.
	Credentials bool

	// Header is merged into every request before per-call overrides.
	Header http.Header

	// Debug enables per-request diagnostic logging.
	Debug bool

	Logger logger.Logger
}

func (c Config) withDefaults() Config {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Credentials && c.HTTPClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err == nil {
			c.HTTPClient.Jar = jar
		}
	}
	if c.Logger == nil {
		c.Logger = logger.Default()
	}
	return c
}
