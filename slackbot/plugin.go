// Package slackbot bridges Slack's three webhook shapes (events, slash
// commands, interactive actions) onto the dispatch router. It is registered
// on the application shell as the "slack" plugin; other plugins fetch it by
// name to reach the Slack Web API client.
package slackbot

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/marvin-bot/marvin/core"
	"github.com/marvin-bot/marvin/router"
)

// PluginName is the registry key other plugins use to look this plugin up.
const PluginName = "slack"

// Config carries the authentication material. SigningSecret, when set,
// selects HMAC validation of every inbound webhook; otherwise the legacy
// VerificationToken is compared against the token each payload carries.
type Config struct {
	BotToken          string
	SigningSecret     string
	VerificationToken string
	// Admins is the Slack user-id allow-list for admin-gated handlers.
	Admins []string
}

type Plugin struct {
	Router *router.Router
	Client *slack.Client

	cfg        Config
	app        *core.App
	dispatcher *router.Dispatcher

	// The bot's own user id, learned from event authorizations. Used to
	// short-circuit the bot's own messages and to strip mention prefixes.
	botUID atomic.Value
}

// New builds the plugin with an empty router. Routes are registered on
// p.Router before the shell loads plugins; after that the router is
// read-only.
func New(cfg Config) *Plugin {
	return &Plugin{
		Router: router.NewRouter(),
		cfg:    cfg,
	}
}

func (p *Plugin) Name() string { return PluginName }

// Load wires the Slack client onto the shell's shared HTTP client and
// registers the three webhook endpoints.
func (p *Plugin) Load(app *core.App) error {
	p.app = app
	p.Client = slack.New(p.cfg.BotToken, slack.OptionHTTPClient(app.HTTPClient()))
	p.dispatcher = &router.Dispatcher{
		Router: p.Router,
		Admins: p.cfg.Admins,
		Logger: log.Logger,
	}

	app.Handle("/slack/events", p.handleEvents)
	app.Handle("/slack/commands", p.handleCommands)
	app.Handle("/slack/actions", p.handleActions)
	return nil
}

// Dispatcher exposes the dispatch entry point for cross-plugin use.
func (p *Plugin) Dispatcher() *router.Dispatcher {
	return p.dispatcher
}

func (p *Plugin) botUserID() string {
	if v := p.botUID.Load(); v != nil {
		return v.(string)
	}
	return ""
}

func (p *Plugin) setBotUserID(uid string) {
	if uid != "" {
		p.botUID.Store(uid)
	}
}

func stripBotMention(body string, botUID string) string {
	return strings.TrimSpace(strings.ReplaceAll(body, "<@"+botUID+">", ""))
}

// FromEnv fetches the loaded slack plugin out of a handler's environment.
func FromEnv(env router.Env) (*Plugin, error) {
	v, ok := env.Plugin(PluginName)
	if !ok {
		return nil, fmt.Errorf("plugin %q is not loaded", PluginName)
	}
	p, ok := v.(*Plugin)
	if !ok {
		return nil, fmt.Errorf("plugin %q has unexpected type %T", PluginName, v)
	}
	return p, nil
}
