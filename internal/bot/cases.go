package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"aura/internal/router"
	"aura/internal/state"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) cmdWarnings(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	warnings := b.store.Warnings(c.Guild.ID, target.ID)
	if len(warnings) == 0 {
		return replyEmbed(c, b.infoEmbed("Warnings", fmt.Sprintf("%s has no warnings.", target.String())))
	}

	var lines []string
	for i, warning := range warnings {
		lines = append(lines, fmt.Sprintf("**%d.** %s (by %s, %s)",
			i+1, warning.Reason, warning.ModeratorTag, warning.CreatedAt.Format("2006-01-02 15:04")))
	}
	title := fmt.Sprintf("Warnings for %s (%d)", target.String(), len(warnings))
	return replyEmbed(c, b.infoEmbed(title, strings.Join(lines, "\n")))
}

func (b *Bot) cmdClearwarn(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	count := len(b.store.Warnings(c.Guild.ID, target.ID))
	b.store.ClearWarnings(c.Guild.ID, target.ID)
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Cleared %d warnings for %s.", count, target.String())))
}

// cmdDelwarn removes a single warning by its 1-based position in the user's
// list, as shown by the warnings command.
func (b *Bot) cmdDelwarn(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	position := int(0)
	if c.Options != nil {
		position = int(c.Options.Int("number"))
	}
	if position == 0 && len(args) > 1 {
		position, _ = strconv.Atoi(args[1])
	}
	if position < 1 {
		return router.Rejectf("Please give the warning number to remove.")
	}

	if !b.store.DeleteWarning(c.Guild.ID, target.ID, position-1) {
		return router.Rejectf("That user has no warning with that number.")
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Removed warning #%d for %s.", position, target.String())))
}

func (b *Bot) cmdModlogs(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	cases := b.cases.List(c.Guild.ID, target.ID)
	if len(cases) == 0 {
		return replyEmbed(c, b.infoEmbed("Moderation history", fmt.Sprintf("%s has a clean record.", target.String())))
	}

	var lines []string
	for _, entry := range cases {
		line := fmt.Sprintf("**Case #%d** %s by %s: %s", entry.ID, entry.Action, entry.ModeratorTag, entry.Reason)
		if entry.Duration != "" {
			line += fmt.Sprintf(" (%s)", entry.Duration)
		}
		lines = append(lines, line)
	}
	title := fmt.Sprintf("Moderation history for %s (%d cases)", target.String(), len(cases))
	return replyEmbed(c, b.infoEmbed(title, strings.Join(lines, "\n")))
}

func (b *Bot) cmdCase(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}

	caseID := caseNumber(c, args, 0)
	if caseID < 1 {
		return router.Rejectf("Please give a case number.")
	}

	entry, ok := b.cases.Find(c.Guild.ID, caseID)
	if !ok {
		return router.Rejectf("No case with that number exists in this server.")
	}

	embed := b.infoEmbed(fmt.Sprintf("Case #%d | %s", entry.ID, entry.Action), "")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (%s)", entry.UserTag, entry.UserID), Inline: true},
		{Name: "Moderator", Value: entry.ModeratorTag, Inline: true},
		{Name: "Reason", Value: entry.Reason},
	}
	if entry.Duration != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Duration", Value: entry.Duration, Inline: true})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: entry.CreatedAt.Format("2006-01-02 15:04 MST")}
	return replyEmbed(c, embed)
}

// cmdReason rewrites the reason on an existing case.
func (b *Bot) cmdReason(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}

	caseID := caseNumber(c, args, 0)
	if caseID < 1 {
		return router.Rejectf("Please give a case number.")
	}
	reason := restArg(c, "reason", args, 1)
	if reason == "" {
		return router.Rejectf("Please give the new reason.")
	}

	if !b.cases.AmendReason(c.Guild.ID, caseID, reason) {
		return router.Rejectf("No case with that number exists in this server.")
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Updated reason for case #%d.", caseID)))
}

func caseNumber(c *router.Context, args []string, idx int) int {
	if c.Options != nil {
		if n := c.Options.Int("case"); n > 0 {
			return int(n)
		}
	}
	if idx < len(args) {
		if n, err := strconv.Atoi(args[idx]); err == nil {
			return n
		}
	}
	return 0
}

func (b *Bot) cmdNotes(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	notes := b.store.Notes(c.Guild.ID, target.ID)
	if len(notes) == 0 {
		return replyEmbed(c, b.infoEmbed("Notes", fmt.Sprintf("No notes on %s.", target.String())))
	}

	var lines []string
	for i, note := range notes {
		lines = append(lines, fmt.Sprintf("**%d.** %s (by %s, %s)",
			i+1, note.Text, note.ModeratorTag, note.CreatedAt.Format("2006-01-02 15:04")))
	}
	return replyEmbed(c, b.infoEmbed(fmt.Sprintf("Notes on %s", target.String()), strings.Join(lines, "\n")))
}

func (b *Bot) cmdNote(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	text := restArg(c, "text", args, 1)
	if text == "" {
		return router.Rejectf("Please give the note text.")
	}

	b.store.AddNote(c.Guild.ID, target.ID, state.Note{
		ID:           strconv.FormatInt(time.Now().UnixNano(), 36),
		ModeratorID:  c.User.ID,
		ModeratorTag: c.User.String(),
		Text:         text,
		CreatedAt:    time.Now(),
	})
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Added a note on %s.", target.String())))
}

func (b *Bot) cmdDelnote(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	position := 0
	if c.Options != nil {
		position = int(c.Options.Int("number"))
	}
	if position == 0 && len(args) > 1 {
		position, _ = strconv.Atoi(args[1])
	}
	if position < 1 || !b.store.DeleteNote(c.Guild.ID, target.ID, position-1) {
		return router.Rejectf("That user has no note with that number.")
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Removed note #%d for %s.", position, target.String())))
}

func (b *Bot) cmdClearnotes(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	count := len(b.store.Notes(c.Guild.ID, target.ID))
	b.store.ClearNotes(c.Guild.ID, target.ID)
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Cleared %d notes on %s.", count, target.String())))
}
