// Package channels posts a short orientation when a member joins a channel.
package channels

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/marvin-bot/marvin/plugins/blockkit"
	"github.com/marvin-bot/marvin/router"
	"github.com/marvin-bot/marvin/slackbot"
)

// Register adds the member_joined_channel handler. Detached: the orientation
// message is best-effort.
func Register(rt *router.Router) {
	rt.OnEvent("member_joined_channel", router.NewRegistration("channels.orientation", orientation).Detached())
}

func orientation(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	ev := p.(*router.Event)
	if ev.User == "" || ev.Channel == "" {
		return nil, nil
	}

	sb, err := slackbot.FromEnv(env)
	if err != nil {
		return nil, err
	}
	_, _, err = sb.Client.PostMessageContext(ctx, ev.Channel,
		slack.MsgOptionText("Welcome!", false),
		slack.MsgOptionBlocks(blockkit.Orientation(ev.User, ev.Channel)...))
	return nil, err
}
