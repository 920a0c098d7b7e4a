package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePlugin struct {
	name   string
	loaded *[]string
}

func (p fakePlugin) Name() string { return p.name }

func (p fakePlugin) Load(app *App) error {
	*p.loaded = append(*p.loaded, p.name)
	return nil
}

func TestRegisterPlugin_DuplicateName(t *testing.T) {
	app := New()
	var loaded []string

	assert.NoError(t, app.RegisterPlugin(fakePlugin{name: "slack", loaded: &loaded}))
	err := app.RegisterPlugin(fakePlugin{name: "slack", loaded: &loaded})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLoad_RegistrationOrder(t *testing.T) {
	app := New()
	var loaded []string

	app.RegisterPlugin(fakePlugin{name: "airtable", loaded: &loaded})
	app.RegisterPlugin(fakePlugin{name: "slack", loaded: &loaded})

	assert.NoError(t, app.Load())
	assert.Equal(t, []string{"airtable", "slack"}, loaded)
}

func TestRegisterPlugin_FrozenAfterLoad(t *testing.T) {
	app := New()
	var loaded []string

	app.RegisterPlugin(fakePlugin{name: "slack", loaded: &loaded})
	assert.NoError(t, app.Load())

	err := app.RegisterPlugin(fakePlugin{name: "late", loaded: &loaded})
	assert.Error(t, err)

	assert.Error(t, app.Load(), "loading twice is an error")
}

func TestPlugin_LookupByName(t *testing.T) {
	app := New()
	var loaded []string
	p := fakePlugin{name: "airtable", loaded: &loaded}
	app.RegisterPlugin(p)

	got, ok := app.Plugin("airtable")
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = app.Plugin("missing")
	assert.False(t, ok)
}

func TestHealthRoute(t *testing.T) {
	app := New()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestPluginsRoute(t *testing.T) {
	app := New()
	var loaded []string
	app.RegisterPlugin(fakePlugin{name: "airtable", loaded: &loaded})
	app.RegisterPlugin(fakePlugin{name: "slack", loaded: &loaded})

	req := httptest.NewRequest(http.MethodGet, "/plugins", nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"plugins":["airtable","slack"]}`, rr.Body.String())
}

func TestPluginsRoute_PostRejected(t *testing.T) {
	app := New()

	req := httptest.NewRequest(http.MethodPost, "/plugins", nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHTTPClient_SharedInstance(t *testing.T) {
	app := New()
	assert.NotNil(t, app.HTTPClient())
	assert.Same(t, app.HTTPClient(), app.HTTPClient())
}
