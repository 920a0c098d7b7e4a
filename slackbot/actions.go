package slackbot

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/tidwall/gjson"

	"github.com/marvin-bot/marvin/router"
)

// handleActions is the interactive endpoint: block actions, legacy
// interactive messages and dialog submissions. The envelope arrives
// form-encoded with the real body nested in the "payload" field.
func (p *Plugin) handleActions(w http.ResponseWriter, r *http.Request) {
	body, err := p.verifyRequest(w, r)
	if err != nil {
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	payload := form.Get("payload")
	if payload == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !p.checkToken(w, callback.Token) {
		return
	}

	tasks := p.dispatcher.Run(r.Context(), p.app, p.actionPayload(callback, payload))
	router.Reconcile(r.Context(), log.Logger, tasks).Write(w)
}

// actionPayload extracts the routing key and sub-key. Message block actions
// carry no top-level callback_id: modals put the identifier in the view,
// message buttons in the action entry's block_id. The sub-key is the first
// action entry's action_id (or name for legacy attachments).
func (p *Plugin) actionPayload(callback slack.InteractionCallback, payload string) *router.Action {
	key := callback.CallbackID
	if key == "" {
		key = gjson.Get(payload, "view.callback_id").String()
	}
	if key == "" {
		key = gjson.Get(payload, "actions.0.block_id").String()
	}

	sub := gjson.Get(payload, "actions.0.action_id").String()
	if sub == "" {
		sub = gjson.Get(payload, "actions.0.name").String()
	}

	value := gjson.Get(payload, "actions.0.value").String()
	if value == "" {
		value = gjson.Get(payload, "actions.0.selected_option.value").String()
	}

	botUID := p.botUserID()
	mentioned := botUID != "" &&
		strings.Contains(gjson.Get(payload, "message.text").String(), "<@"+botUID+">")

	return &router.Action{
		Callback:     callback,
		CallbackID:   key,
		ActionName:   sub,
		Value:        value,
		User:         callback.User.ID,
		BotMentioned: mentioned,
	}
}
