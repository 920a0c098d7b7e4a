// Package mentorship implements the mentorship-request flow: members file a
// request with /mentorship, mentors claim it from the announcement message.
package mentorship

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/marvin-bot/marvin/airtable"
	"github.com/marvin-bot/marvin/plugins/blockkit"
	"github.com/marvin-bot/marvin/router"
	"github.com/marvin-bot/marvin/slackbot"
)

// Register adds the /mentorship command and the claim action. Claiming is
// restricted to the admin allow-list.
func Register(rt *router.Router) {
	rt.OnCommand("/mentorship", router.NewRegistration("mentorship.request", request))
	rt.OnAction("mentorship_request", "claim", router.NewRegistration("mentorship.claim", claim).AdminOnly())
}

func request(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	cmd := p.(*router.Command)

	topic := strings.TrimSpace(cmd.Text)
	if topic == "" {
		return router.Ephemeral("Usage: /mentorship <topic you want help with>"), nil
	}

	base, err := airtable.FromEnv(env)
	if err != nil {
		return nil, err
	}
	record, err := base.CreateMentorshipRequest(cmd.UserID(), topic)
	if err != nil {
		return nil, err
	}

	sb, err := slackbot.FromEnv(env)
	if err != nil {
		return nil, err
	}
	_, _, err = sb.Client.PostMessageContext(ctx, cmd.ChannelID,
		slack.MsgOptionText(fmt.Sprintf("Mentorship request from <@%s>", cmd.UserID()), false),
		slack.MsgOptionBlocks(blockkit.MentorshipRequest(cmd.UserID(), topic, record.ID)...))
	if err != nil {
		return nil, err
	}

	return router.Ephemeral("Your mentorship request is filed. A mentor will claim it soon."), nil
}

func claim(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	act := p.(*router.Action)
	if act.Value == "" {
		return router.Ephemeral("This request can no longer be claimed."), nil
	}

	base, err := airtable.FromEnv(env)
	if err != nil {
		return nil, err
	}
	if _, err := base.ClaimMentorshipRequest(act.Value, act.User); err != nil {
		return nil, err
	}

	sb, err := slackbot.FromEnv(env)
	if err != nil {
		return nil, err
	}
	channel := act.Callback.Channel.ID
	ts := act.Callback.Message.Timestamp
	if channel != "" && ts != "" {
		_, _, _, err = sb.Client.UpdateMessageContext(ctx, channel, ts,
			slack.MsgOptionText(fmt.Sprintf("Mentorship request claimed by <@%s> :handshake:", act.User), false))
		if err != nil {
			return nil, err
		}
	}

	return router.Ephemeral("You claimed this mentorship request."), nil
}
