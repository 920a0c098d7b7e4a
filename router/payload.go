package router

import (
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Kind discriminates the three webhook shapes Slack delivers.
type Kind int

const (
	KindEvent Kind = iota
	KindCommand
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindCommand:
		return "command"
	case KindAction:
		return "action"
	}
	return "unknown"
}

// Payload is one decoded webhook body. It is built once per HTTP request by
// the endpoint adapters and discarded after dispatch completes.
type Payload interface {
	Kind() Kind
	// Key is the routing key: the inner event type, the slash command name,
	// or the interactive callback id.
	Key() string
	// SubKey disambiguates interactive actions sharing one callback id.
	// Empty for events and commands.
	SubKey() string
	// UserID identifies the invoking Slack user, when the payload carries one.
	UserID() string
	// Mentioned reports whether the bot was @-mentioned.
	Mentioned() bool
}

// Event is a decoded Events API callback.
type Event struct {
	TeamID string
	Type   string
	Inner  slackevents.EventsAPIInnerEvent
	User   string
	// UserName is the profile name when the event carries a full user
	// object (e.g. team_join); empty otherwise.
	UserName string
	Channel  string
	// Text is the message text with any leading bot mention stripped.
	Text         string
	BotMentioned bool
}

func (e *Event) Kind() Kind      { return KindEvent }
func (e *Event) Key() string     { return e.Type }
func (e *Event) SubKey() string  { return "" }
func (e *Event) UserID() string  { return e.User }
func (e *Event) Mentioned() bool { return e.BotMentioned }

// Command is a decoded slash command invocation.
type Command struct {
	slack.SlashCommand
}

func (c *Command) Kind() Kind      { return KindCommand }
func (c *Command) Key() string     { return c.Command }
func (c *Command) SubKey() string  { return "" }
func (c *Command) UserID() string  { return c.SlashCommand.UserID }
func (c *Command) Mentioned() bool { return false }

// Action is a decoded interactive payload (block action, interactive
// message, or dialog submission).
type Action struct {
	Callback   slack.InteractionCallback
	CallbackID string
	// ActionName is the per-button sub-key: the block action's action_id or
	// the legacy attachment action's name.
	ActionName string
	// Value carries the selected value of the triggering action entry.
	Value string
	User  string
	// BotMentioned reports whether the action's source message @-mentions
	// the bot.
	BotMentioned bool
}

func (a *Action) Kind() Kind      { return KindAction }
func (a *Action) Key() string     { return a.CallbackID }
func (a *Action) SubKey() string  { return a.ActionName }
func (a *Action) UserID() string  { return a.User }
func (a *Action) Mentioned() bool { return a.BotMentioned }
