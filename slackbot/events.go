package slackbot

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack/slackevents"
	"github.com/tidwall/gjson"

	"github.com/marvin-bot/marvin/router"
)

// handleEvents is the Events API endpoint. The url_verification handshake is
// answered here and never reaches the router.
func (p *Plugin) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := p.verifyRequest(w, r)
	if err != nil {
		return
	}

	apiEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Authenticate before looking at the envelope type; every envelope
	// carries the token, not just event callbacks.
	if !p.checkToken(w, apiEvent.Token) {
		return
	}

	if apiEvent.Type == slackevents.URLVerification {
		var res *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &res); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text")
		w.Write([]byte(res.Challenge))
		return
	}

	if apiEvent.Type != slackevents.CallbackEvent {
		w.WriteHeader(http.StatusOK)
		return
	}

	p.setBotUserID(gjson.GetBytes(body, "authorizations.0.user_id").String())

	ev := p.eventPayload(&apiEvent, body)
	if ev == nil {
		// The bot's own message, or nothing routable. Acknowledge and move on.
		w.WriteHeader(http.StatusOK)
		return
	}

	tasks := p.dispatcher.Run(r.Context(), p.app, ev)
	router.Reconcile(r.Context(), log.Logger, tasks).Write(w)
}

// eventPayload builds the routed Event. Message events are special-cased:
// the bot's own messages short-circuit to nil to avoid feedback loops, and a
// leading bot mention is stripped off the text.
func (p *Plugin) eventPayload(apiEvent *slackevents.EventsAPIEvent, body []byte) *router.Event {
	botUID := p.botUserID()
	ev := &router.Event{
		TeamID: apiEvent.TeamID,
		Type:   apiEvent.InnerEvent.Type,
		Inner:  apiEvent.InnerEvent,
	}

	switch data := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if data.BotID != "" || (botUID != "" && data.User == botUID) {
			return nil
		}
		ev.User = data.User
		ev.Channel = data.Channel
		text := data.Text
		if botUID != "" && strings.HasPrefix(text, "<@"+botUID+">") {
			ev.BotMentioned = true
			text = strings.TrimSpace(strings.TrimPrefix(text, "<@"+botUID+">"))
		}
		ev.Text = text
	case *slackevents.AppMentionEvent:
		if botUID != "" && data.User == botUID {
			return nil
		}
		ev.User = data.User
		ev.Channel = data.Channel
		ev.Text = stripBotMention(data.Text, botUID)
		ev.BotMentioned = true
	case *slackevents.MemberJoinedChannelEvent:
		ev.User = data.User
		ev.Channel = data.Channel
	default:
		// team_join and other events carry either a user id string or a
		// full user object; take whichever is present.
		user := gjson.GetBytes(body, "event.user")
		if user.IsObject() {
			ev.User = user.Get("id").String()
			ev.UserName = user.Get("profile.display_name").String()
			if ev.UserName == "" {
				ev.UserName = user.Get("real_name").String()
			}
			if ev.UserName == "" {
				ev.UserName = user.Get("name").String()
			}
		} else {
			ev.User = user.String()
		}
		if botUID != "" && ev.User == botUID {
			return nil
		}
	}

	return ev
}
