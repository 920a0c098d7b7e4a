// Package airtable owns the connection to the community's Airtable base.
// All durable bot state (members, mentorship requests, moderation reports)
// lives there; this plugin exposes the few typed operations the handler
// plugins need, looked up through the shell registry under "airtable".
package airtable

import (
	"fmt"
	"strings"

	at "github.com/mehanizm/airtable"

	"github.com/marvin-bot/marvin/core"
	"github.com/marvin-bot/marvin/router"
)

// PluginName is the registry key other plugins use to look this plugin up.
const PluginName = "airtable"

type Config struct {
	APIKey string
	BaseID string

	// Table names, overridable for bases with different naming.
	MembersTable    string
	MentorshipTable string
	ReportsTable    string
}

type Plugin struct {
	cfg    Config
	client *at.Client
}

func New(cfg Config) *Plugin {
	if cfg.MembersTable == "" {
		cfg.MembersTable = "Members"
	}
	if cfg.MentorshipTable == "" {
		cfg.MentorshipTable = "Mentorship Requests"
	}
	if cfg.ReportsTable == "" {
		cfg.ReportsTable = "Reports"
	}
	return &Plugin{cfg: cfg}
}

func (p *Plugin) Name() string { return PluginName }

// Load builds the client on the shell's shared HTTP client.
func (p *Plugin) Load(app *core.App) error {
	if p.cfg.APIKey == "" || p.cfg.BaseID == "" {
		return fmt.Errorf("airtable: api key and base id are required")
	}
	p.client = at.NewClient(p.cfg.APIKey)
	p.client.SetCustomClient(app.HTTPClient())
	return nil
}

func (p *Plugin) table(name string) *at.Table {
	return p.client.GetTable(p.cfg.BaseID, name)
}

// FindMemberBySlackID returns the member record for a Slack user id, or nil
// when none exists.
func (p *Plugin) FindMemberBySlackID(slackID string) (*at.Record, error) {
	records, err := p.table(p.cfg.MembersTable).GetRecords().
		WithFilterFormula(fmt.Sprintf("{Slack ID} = '%s'", escapeFormulaValue(slackID))).
		MaxRecords(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("finding member %s: %w", slackID, err)
	}
	if len(records.Records) == 0 {
		return nil, nil
	}
	return records.Records[0], nil
}

// UpsertMember creates the member record for a Slack user unless one already
// exists.
func (p *Plugin) UpsertMember(slackID, name string) (*at.Record, error) {
	existing, err := p.FindMemberBySlackID(slackID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := p.table(p.cfg.MembersTable).AddRecords(&at.Records{
		Records: []*at.Record{
			{Fields: map[string]interface{}{
				"Slack ID": slackID,
				"Name":     name,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating member %s: %w", slackID, err)
	}
	return created.Records[0], nil
}

// CreateMentorshipRequest files a new open mentorship request.
func (p *Plugin) CreateMentorshipRequest(slackID, topic string) (*at.Record, error) {
	created, err := p.table(p.cfg.MentorshipTable).AddRecords(&at.Records{
		Records: []*at.Record{
			{Fields: map[string]interface{}{
				"Slack ID": slackID,
				"Topic":    topic,
				"Status":   "Open",
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating mentorship request for %s: %w", slackID, err)
	}
	return created.Records[0], nil
}

// ClaimMentorshipRequest marks an open request as claimed by a mentor.
func (p *Plugin) ClaimMentorshipRequest(recordID, mentorSlackID string) (*at.Record, error) {
	record, err := p.table(p.cfg.MentorshipTable).GetRecord(recordID)
	if err != nil {
		return nil, fmt.Errorf("fetching mentorship request %s: %w", recordID, err)
	}
	updated, err := record.UpdateRecordPartial(map[string]interface{}{
		"Status": "Claimed",
		"Mentor": mentorSlackID,
	})
	if err != nil {
		return nil, fmt.Errorf("claiming mentorship request %s: %w", recordID, err)
	}
	return updated, nil
}

// CreateReport files a moderation report.
func (p *Plugin) CreateReport(reporterSlackID, details string) (*at.Record, error) {
	created, err := p.table(p.cfg.ReportsTable).AddRecords(&at.Records{
		Records: []*at.Record{
			{Fields: map[string]interface{}{
				"Reporter": reporterSlackID,
				"Details":  details,
				"Status":   "Open",
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating report from %s: %w", reporterSlackID, err)
	}
	return created.Records[0], nil
}

// ResolveReport closes a moderation report.
func (p *Plugin) ResolveReport(recordID, resolverSlackID string) (*at.Record, error) {
	record, err := p.table(p.cfg.ReportsTable).GetRecord(recordID)
	if err != nil {
		return nil, fmt.Errorf("fetching report %s: %w", recordID, err)
	}
	updated, err := record.UpdateRecordPartial(map[string]interface{}{
		"Status":      "Resolved",
		"Resolved By": resolverSlackID,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving report %s: %w", recordID, err)
	}
	return updated, nil
}

// escapeFormulaValue keeps user-supplied ids from breaking out of the quoted
// filterByFormula literal.
func escapeFormulaValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}

// FromEnv fetches the loaded airtable plugin out of a handler's environment.
func FromEnv(env router.Env) (*Plugin, error) {
	v, ok := env.Plugin(PluginName)
	if !ok {
		return nil, fmt.Errorf("plugin %q is not loaded", PluginName)
	}
	p, ok := v.(*Plugin)
	if !ok {
		return nil, fmt.Errorf("plugin %q has unexpected type %T", PluginName, v)
	}
	return p, nil
}
