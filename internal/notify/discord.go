package notify

import (
	"context"
	"net/http"
	"strings"
)

// discordMaxContent is the webhook content limit in characters.
const discordMaxContent = 2000

type discordPayload struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// DiscordSender posts to a channel webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{webhookURL: webhookURL, client: newHTTPClient()}
}

// Send posts "**title**" followed by a code block holding message, so the
// price columns stay aligned. Content over the limit is cut.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	content := "**" + title + "**\n```\n" + strings.ReplaceAll(message, "`", "'") + "\n```"
	if r := []rune(content); len(r) > discordMaxContent {
		content = string(r[:discordMaxContent])
	}
	return postJSON(ctx, d.client, d.Name(), d.webhookURL, discordPayload{Username: "marketwatch", Content: content})
}

func (d *DiscordSender) Name() string { return "discord" }
