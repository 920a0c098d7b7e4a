// Package greeting handles the onboarding flow for new workspace members.
// Both handlers are detached: Slack only needs the webhook acknowledged, the
// welcome DM and the Airtable member record can land a moment later.
package greeting

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/marvin-bot/marvin/airtable"
	"github.com/marvin-bot/marvin/plugins/blockkit"
	"github.com/marvin-bot/marvin/router"
	"github.com/marvin-bot/marvin/slackbot"
)

// Register adds the team_join handlers.
func Register(rt *router.Router) {
	rt.OnEvent("team_join", router.NewRegistration("greeting.welcome", welcome).Detached())
	rt.OnEvent("team_join", router.NewRegistration("greeting.record", record).Detached())
}

func welcome(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	ev := p.(*router.Event)
	sb, err := slackbot.FromEnv(env)
	if err != nil {
		return nil, err
	}

	_, _, err = sb.Client.PostMessageContext(ctx, ev.User,
		slack.MsgOptionText("Welcome aboard!", false),
		slack.MsgOptionBlocks(blockkit.Welcome(ev.User)...))
	return nil, err
}

func record(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	ev := p.(*router.Event)
	base, err := airtable.FromEnv(env)
	if err != nil {
		return nil, err
	}

	name := ev.UserName
	if name == "" {
		name = ev.User
	}

	_, err = base.UpsertMember(ev.User, name)
	return nil, err
}
