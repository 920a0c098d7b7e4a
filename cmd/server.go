package cmd

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marvin-bot/marvin/airtable"
	"github.com/marvin-bot/marvin/core"
	"github.com/marvin-bot/marvin/plugins/channels"
	"github.com/marvin-bot/marvin/plugins/greeting"
	"github.com/marvin-bot/marvin/plugins/mentorship"
	"github.com/marvin-bot/marvin/plugins/report"
	"github.com/marvin-bot/marvin/slackbot"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "server",
		Aliases: []string{"serve"},
		Short:   "Run the bot",
		Long:    `Run the bot`,
		RunE:    server,
	}
}

func server(cmd *cobra.Command, args []string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	app := core.New()
	app.ListenPort = viper.GetString("marvin_listen_port")

	base := airtable.New(airtable.Config{
		APIKey: viper.GetString("airtable_api_key"),
		BaseID: viper.GetString("airtable_base"),
	})
	bot := slackbot.New(slackbot.Config{
		BotToken:          viper.GetString("slack_oauth_token"),
		SigningSecret:     viper.GetString("slack_signing_secret"),
		VerificationToken: viper.GetString("slack_verification_token"),
		Admins:            splitAdmins(viper.GetString("marvin_admins")),
	})

	if err := app.RegisterPlugin(base); err != nil {
		return err
	}
	if err := app.RegisterPlugin(bot); err != nil {
		return err
	}

	report.ModeratorChannel = viper.GetString("marvin_moderator_channel")

	greeting.Register(bot.Router)
	mentorship.Register(bot.Router)
	report.Register(bot.Router)
	channels.Register(bot.Router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

func splitAdmins(admins string) []string {
	if admins == "" {
		return nil
	}
	var trimmed []string
	for _, uuid := range strings.Split(admins, ",") {
		if uuid = strings.TrimSpace(uuid); uuid != "" {
			trimmed = append(trimmed, uuid)
		}
	}
	return trimmed
}
