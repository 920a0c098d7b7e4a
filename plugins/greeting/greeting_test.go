package greeting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"

	"github.com/marvin-bot/marvin/core"
	"github.com/marvin-bot/marvin/router"
	"github.com/marvin-bot/marvin/slackbot"
)

type testEnv struct {
	plugins map[string]interface{}
}

func (e *testEnv) Plugin(name string) (interface{}, bool) {
	p, ok := e.plugins[name]
	return p, ok
}

func (e *testEnv) HTTPClient() *http.Client { return http.DefaultClient }

func TestRegister_Wiring(t *testing.T) {
	rt := router.NewRouter()
	Register(rt)

	routes := rt.Routes()
	assert.Len(t, routes, 2)
	for _, route := range routes {
		assert.Equal(t, router.KindEvent, route.Kind)
		assert.Equal(t, "team_join", route.Key)
		assert.False(t, route.Config.Wait, "onboarding handlers are fire-and-forget")
	}
}

func TestWelcome_PostsDM(t *testing.T) {
	var gotChannel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected API call: %s", r.URL.Path)
		}
		r.ParseForm()
		gotChannel = r.FormValue("channel")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"channel":"D123","ts":"1"}`))
	}))
	defer srv.Close()

	sb := slackbot.New(slackbot.Config{BotToken: "xoxb-fake"})
	app := core.New()
	app.RegisterPlugin(sb)
	if err := app.Load(); err != nil {
		t.Fatalf("Failed to load plugins: %v", err)
	}
	sb.Client = slack.New("xoxb-fake", slack.OptionAPIURL(srv.URL+"/"))

	env := &testEnv{plugins: map[string]interface{}{slackbot.PluginName: sb}}
	resp, err := welcome(context.Background(), env, &router.Event{Type: "team_join", User: "U_NEW"})

	assert.NoError(t, err)
	assert.Nil(t, resp, "detached handlers never answer the webhook")
	assert.Equal(t, "U_NEW", gotChannel)
}

func TestWelcome_MissingSlackPlugin(t *testing.T) {
	env := &testEnv{plugins: map[string]interface{}{}}
	_, err := welcome(context.Background(), env, &router.Event{Type: "team_join", User: "U_NEW"})
	assert.Error(t, err)
}
