// Package report implements the moderation-report flow.
package report

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

// ModeratorChannel is where filed reports are announced. Overridden from
// configuration at startup.
var ModeratorChannel = ""

// Register adds the /report command and the admin-only resolve action.
func Register(rt *router.Router) {
	rt.OnCommand("/report", router.NewRegistration("report.file", file))
	rt.OnAction("report", "resolve", router.NewRegistration("report.resolve", resolve).AdminOnly())
}

func file(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	cmd := p.(*router.Command)

	details := strings.TrimSpace(cmd.Text)
	if details == "" {
		return router.Ephemeral("Usage: /report <what happened>"), nil
	}

	base, err := airtable.FromEnv(env)
	if err != nil {
		return nil, err
	}
	record, err := base.CreateReport(cmd.UserID(), details)
	if err != nil {
		return nil, err
	}

	if ModeratorChannel != "" {
		sb, err := slackbot.FromEnv(env)
		if err != nil {
			return nil, err
		}
		_, _, err = sb.Client.PostMessageContext(ctx, ModeratorChannel,
			slack.MsgOptionText(fmt.Sprintf("New report from <@%s>", cmd.UserID()), false),
			slack.MsgOptionBlocks(blockkit.ReportFiled(cmd.UserID(), record.ID)...))
		if err != nil {
			return nil, err
		}
	}

	return router.Ephemeral("Thanks, your report is with the moderators."), nil
}

func resolve(ctx context.Context, env router.Env, p router.Payload) (*router.Response, error) {
	act := p.(*router.Action)
	if act.Value == "" {
		return router.Ephemeral("This report can no longer be resolved from here."), nil
	}

	base, err := airtable.FromEnv(env)
	if err != nil {
		return nil, err
	}
	if _, err := base.ResolveReport(act.Value, act.User); err != nil {
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
			slack.MsgOptionText(fmt.Sprintf("Report resolved by <@%s>", act.User), false))
		if err != nil {
			return nil, err
		}
	}

	return router.Ephemeral("Report resolved."), nil
}
