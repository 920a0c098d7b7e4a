// Package blockkit holds the Block Kit payloads the handler plugins post.
package blockkit

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Welcome is the DM sent to a freshly joined member.
func Welcome(userID string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Hey <@%s>, welcome aboard! :wave:", userID), false, false),
			nil, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"Introduce yourself in *#introductions* and have a look at the pinned onboarding guide. "+
					"If you are after a mentor, `/mentorship <topic>` files a request.", false, false),
			nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				"I'm a bot. Mention me in any channel if you get stuck.", false, false)),
	}
}

// Orientation is posted in a channel when a member joins it.
func Orientation(userID, channelID string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Welcome to <#%s>, <@%s>! Check the channel topic and pins before diving in.", channelID, userID), false, false),
			nil, nil),
	}
}

// MentorshipRequest announces a filed request with a claim button for
// mentors. The record id rides along as the button value so the claim
// handler can update the Airtable row.
func MentorshipRequest(requesterID, topic, recordID string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("<@%s> is looking for a mentor on *%s*", requesterID, topic), false, false),
			nil, nil),
		slack.NewActionBlock("mentorship_request",
			slack.NewButtonBlockElement("claim", recordID,
				slack.NewTextBlockObject(slack.PlainTextType, "Claim", false, false))),
	}
}

// ReportFiled notifies moderators about a new report.
func ReportFiled(reporterID, recordID string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("New moderation report from <@%s>", reporterID), false, false),
			nil, nil),
		slack.NewActionBlock("report",
			slack.NewButtonBlockElement("resolve", recordID,
				slack.NewTextBlockObject(slack.PlainTextType, "Resolve", false, false))),
	}
}
