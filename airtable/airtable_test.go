package airtable

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marvin-bot/marvin/core"
)

// roundTripperFunc lets tests serve canned Airtable API responses through
// the shell's shared HTTP client.
type roundTripperFunc func(r *http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestPlugin(t *testing.T, rt roundTripperFunc) *Plugin {
	t.Helper()
	app := core.New()
	app.HTTPClient().Transport = rt

	p := New(Config{APIKey: "key-fake", BaseID: "appFake"})
	if err := app.RegisterPlugin(p); err != nil {
		t.Fatalf("Failed to register plugin: %v", err)
	}
	if err := app.Load(); err != nil {
		t.Fatalf("Failed to load plugins: %v", err)
	}
	return p
}

func TestLoad_RequiresCredentials(t *testing.T) {
	app := core.New()
	app.RegisterPlugin(New(Config{}))
	assert.Error(t, app.Load())
}

func TestFindMemberBySlackID_Found(t *testing.T) {
	var gotURL string
	p := newTestPlugin(t, func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(http.StatusOK, `{"records":[{"id":"recMember1","fields":{"Slack ID":"U123","Name":"Ada"}}]}`), nil
	})

	record, err := p.FindMemberBySlackID("U123")
	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, "recMember1", record.ID)
	assert.Equal(t, "Ada", record.Fields["Name"])

	assert.Contains(t, gotURL, "appFake/Members")
	assert.Contains(t, gotURL, "filterByFormula")
}

func TestFindMemberBySlackID_Missing(t *testing.T) {
	p := newTestPlugin(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"records":[]}`), nil
	})

	record, err := p.FindMemberBySlackID("U999")
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestCreateMentorshipRequest_SendsOpenStatus(t *testing.T) {
	var sent map[string]interface{}
	p := newTestPlugin(t, func(r *http.Request) (*http.Response, error) {
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &sent)
			return jsonResponse(http.StatusOK, `{"records":[{"id":"recReq1","fields":{"Status":"Open"}}]}`), nil
		}
		return jsonResponse(http.StatusOK, `{"records":[]}`), nil
	})

	record, err := p.CreateMentorshipRequest("U123", "learning Go")
	assert.NoError(t, err)
	assert.Equal(t, "recReq1", record.ID)

	records := sent["records"].([]interface{})
	fields := records[0].(map[string]interface{})["fields"].(map[string]interface{})
	assert.Equal(t, "U123", fields["Slack ID"])
	assert.Equal(t, "learning Go", fields["Topic"])
	assert.Equal(t, "Open", fields["Status"])
}

func TestEscapeFormulaValue(t *testing.T) {
	assert.Equal(t, "plain", escapeFormulaValue("plain"))
	assert.Equal(t, "O\\'Brien", escapeFormulaValue("O'Brien"))
}
