package router

import (
	"context"
	"net/http"
)

// Env is the application context handlers receive: the plugin registry and
// the process-wide outbound HTTP client. Handlers reach other plugins
// (Slack client, Airtable tables) only through Plugin lookup by name.
type Env interface {
	Plugin(name string) (interface{}, bool)
	HTTPClient() *http.Client
}

// HandlerFunc is one application handler. Returning a non-nil *Response
// claims the webhook's HTTP answer; returning (nil, nil) acknowledges
// silently. Errors from awaited handlers surface to the caller as a 500,
// errors from detached handlers are logged only.
type HandlerFunc func(ctx context.Context, env Env, p Payload) (*Response, error)

// Config is the fixed set of per-registration flags.
type Config struct {
	// Wait marks the handler's completion as required before the webhook is
	// answered. Detached (Wait false) handlers can never produce the
	// response and their errors are logged, not propagated.
	Wait bool
	// Mention restricts the handler to payloads where the bot was
	// @-mentioned.
	Mention bool
	// Admin restricts the handler to users on the configured admin
	// allow-list.
	Admin bool
}

// DefaultConfig waits for the handler and applies no filters.
func DefaultConfig() Config {
	return Config{Wait: true}
}

// Registration pairs a handler with its dispatch configuration.
// Registrations are immutable once added to a Router.
type Registration struct {
	Name    string
	Handler HandlerFunc
	Config  Config
}

// NewRegistration builds a registration with the default configuration.
func NewRegistration(name string, handler HandlerFunc) Registration {
	return Registration{Name: name, Handler: handler, Config: DefaultConfig()}
}

// Detached returns a copy whose completion is not awaited before responding.
func (reg Registration) Detached() Registration {
	reg.Config.Wait = false
	return reg
}

// MentionOnly returns a copy that fires only when the bot was @-mentioned.
func (reg Registration) MentionOnly() Registration {
	reg.Config.Mention = true
	return reg
}

// AdminOnly returns a copy that fires only for allow-listed admin users.
func (reg Registration) AdminOnly() Registration {
	reg.Config.Admin = true
	return reg
}
