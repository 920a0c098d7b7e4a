package slackbot

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/marvin-bot/marvin/router"
)

// handleCommands is the slash-command endpoint.
func (p *Plugin) handleCommands(w http.ResponseWriter, r *http.Request) {
	body, err := p.verifyRequest(w, r)
	if err != nil {
		return
	}

	// Restore body so SlashCommandParse can read it via ParseForm
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !p.checkToken(w, cmd.Token) {
		return
	}

	tasks := p.dispatcher.Run(r.Context(), p.app, &router.Command{SlashCommand: cmd})
	router.Reconcile(r.Context(), log.Logger, tasks).Write(w)
}
