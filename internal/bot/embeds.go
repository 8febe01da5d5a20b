package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"aura/internal/router"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) embed(color int, title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func (b *Bot) successEmbed(description string) *discordgo.MessageEmbed {
	return b.embed(b.cfg.Embeds.Success, "", description)
}

func (b *Bot) errorEmbed(description string) *discordgo.MessageEmbed {
	return b.embed(b.cfg.Embeds.Error, "", description)
}

func (b *Bot) warningEmbed(description string) *discordgo.MessageEmbed {
	return b.embed(b.cfg.Embeds.Warning, "", description)
}

func (b *Bot) infoEmbed(title, description string) *discordgo.MessageEmbed {
	return b.embed(b.cfg.Embeds.Info, title, description)
}

func (b *Bot) moderationEmbed(action string, target *discordgo.User, moderator *discordgo.User, reason string, caseID int) *discordgo.MessageEmbed {
	e := b.embed(b.cfg.Embeds.Moderation, fmt.Sprintf("%s | Case #%d", action, caseID), "")
	e.Fields = []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (%s)", target.String(), target.ID), Inline: true},
		{Name: "Moderator", Value: moderator.String(), Inline: true},
		{Name: "Reason", Value: reason},
	}
	return e
}

func replyEmbed(c *router.Context, embed *discordgo.MessageEmbed) error {
	return c.Reply(router.Reply{Embeds: []*discordgo.MessageEmbed{embed}})
}

func replyText(c *router.Context, format string, args ...any) error {
	return c.Reply(router.Reply{Content: fmt.Sprintf(format, args...)})
}

// parseTime reads shorthand durations such as 30s, 15m, 2h, 7d or 1w.
// A bare number is taken as minutes.
func parseTime(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 0, false
	}

	unit := time.Minute
	switch {
	case strings.HasSuffix(raw, "ms"):
		unit, raw = time.Millisecond, strings.TrimSuffix(raw, "ms")
	case strings.HasSuffix(raw, "s"):
		unit, raw = time.Second, strings.TrimSuffix(raw, "s")
	case strings.HasSuffix(raw, "m"):
		unit, raw = time.Minute, strings.TrimSuffix(raw, "m")
	case strings.HasSuffix(raw, "h"):
		unit, raw = time.Hour, strings.TrimSuffix(raw, "h")
	case strings.HasSuffix(raw, "d"):
		unit, raw = 24*time.Hour, strings.TrimSuffix(raw, "d")
	case strings.HasSuffix(raw, "w"):
		unit, raw = 7*24*time.Hour, strings.TrimSuffix(raw, "w")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return time.Duration(value * float64(unit)), true
}

// formatDuration renders a duration the way it would be written as an
// argument: largest unit first, seconds resolution.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}

	var parts []string
	if days := int(d.Hours()) / 24; days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
		d -= time.Duration(days) * 24 * time.Hour
	}
	if hours := int(d.Hours()); hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
		d -= time.Duration(hours) * time.Hour
	}
	if minutes := int(d.Minutes()); minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
		d -= time.Duration(minutes) * time.Minute
	}
	if seconds := int(d.Seconds()); seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}

// formatElapsed renders how long ago something happened, in hours and
// minutes, for AFK notices.
func formatElapsed(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm ago", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm ago", minutes)
	default:
		return "just now"
	}
}

// stripMention reduces a <@id>, <@!id>, <#id> or <@&id> token to the bare
// snowflake. Plain IDs pass through unchanged.
func stripMention(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "<")
	token = strings.TrimSuffix(token, ">")
	token = strings.TrimPrefix(token, "@")
	token = strings.TrimPrefix(token, "#")
	token = strings.TrimPrefix(token, "&")
	token = strings.TrimPrefix(token, "!")
	return token
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
