package blockkit

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

func TestWelcome(t *testing.T) {
	blocks := Welcome("U123")
	assert.Len(t, blocks, 3)

	section, ok := blocks[0].(*slack.SectionBlock)
	assert.True(t, ok)
	assert.Contains(t, section.Text.Text, "<@U123>")
}

func TestMentorshipRequest_ClaimButtonCarriesRecordID(t *testing.T) {
	blocks := MentorshipRequest("U123", "generics", "rec42")
	assert.Len(t, blocks, 2)

	actions, ok := blocks[1].(*slack.ActionBlock)
	assert.True(t, ok)
	assert.Equal(t, "mentorship_request", actions.BlockID)

	button, ok := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	assert.True(t, ok)
	assert.Equal(t, "claim", button.ActionID)
	assert.Equal(t, "rec42", button.Value)
}

func TestReportFiled_ResolveButton(t *testing.T) {
	blocks := ReportFiled("U123", "rec7")
	actions, ok := blocks[1].(*slack.ActionBlock)
	assert.True(t, ok)

	button, ok := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	assert.True(t, ok)
	assert.Equal(t, "resolve", button.ActionID)
	assert.Equal(t, "rec7", button.Value)
}
