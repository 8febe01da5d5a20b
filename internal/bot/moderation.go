package bot

import (
	"fmt"
	"strconv"
	"time"

	"aura/internal/modlog"
	"aura/internal/router"
	"aura/internal/state"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// maxTimeout is the longest communication timeout the platform accepts.
const maxTimeout = 28 * 24 * time.Hour

func modlogUser(u *discordgo.User) modlog.User {
	return modlog.User{ID: u.ID, Tag: u.String()}
}

func (b *Bot) cmdBan(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	if err := b.requireCanModerate(c, target); err != nil {
		return err
	}

	var duration time.Duration
	reasonStart := 1
	if raw := stringArg(c, "time", nil, 0); raw != "" {
		duration, _ = parseTime(raw)
	} else if len(args) > 1 {
		if d, ok := parseTime(args[1]); ok {
			duration = d
			reasonStart = 2
		}
	}
	reason := reasonFrom(c, args, reasonStart)

	// Bans always prune the last week of the target's messages.
	if err := b.actions.Ban(c.Guild.ID, target.User.ID, reason, 7); err != nil {
		return fmt.Errorf("ban %s: %w", target.User.ID, err)
	}

	durationText := ""
	if duration > 0 {
		durationText = formatDuration(duration)
		guildID, userID := c.Guild.ID, target.User.ID
		b.sched.After(duration, "unban", func() {
			if err := b.actions.Unban(guildID, userID); err != nil {
				b.logger.Warn("scheduled unban failed",
					zap.String("guild", guildID), zap.String("user", userID), zap.Error(err))
			}
		})
	}

	caseID := b.cases.Create(c.Guild.ID, modlog.ActionBan, modlogUser(target.User), modlogUser(c.User), reason, durationText)
	return replyEmbed(c, b.moderationEmbed(string(modlog.ActionBan), target.User, c.User, reason, caseID))
}

func (b *Bot) cmdUnban(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}

	userID, userTag := "", ""
	if c.Options != nil {
		if user := c.Options.User("user"); user != nil {
			userID, userTag = user.ID, user.String()
		}
	}
	if userID == "" && c.Options != nil {
		userID = stripMention(c.Options.String("user"))
	}
	if userID == "" && len(args) > 0 {
		userID = stripMention(args[0])
	}
	if !isSnowflake(userID) {
		return router.Rejectf("Please provide the ID of a banned user.")
	}
	if userTag == "" {
		userTag = userID
	}
	reason := reasonFrom(c, args, 1)

	if err := b.actions.Unban(c.Guild.ID, userID); err != nil {
		return fmt.Errorf("unban %s: %w", userID, err)
	}

	caseID := b.cases.Create(c.Guild.ID, modlog.ActionUnban, modlog.User{ID: userID, Tag: userTag}, modlogUser(c.User), reason, "")
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Unbanned %s (Case #%d)", userTag, caseID)))
}

func (b *Bot) cmdKick(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	if err := b.requireCanModerate(c, target); err != nil {
		return err
	}
	reason := reasonFrom(c, args, 1)

	if err := b.actions.Kick(c.Guild.ID, target.User.ID, reason); err != nil {
		return fmt.Errorf("kick %s: %w", target.User.ID, err)
	}

	caseID := b.cases.Create(c.Guild.ID, modlog.ActionKick, modlogUser(target.User), modlogUser(c.User), reason, "")
	return replyEmbed(c, b.moderationEmbed(string(modlog.ActionKick), target.User, c.User, reason, caseID))
}

func (b *Bot) cmdMute(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	if err := b.requireCanModerate(c, target); err != nil {
		return err
	}

	duration := maxTimeout
	reasonStart := 1
	if raw := stringArg(c, "time", nil, 0); raw != "" {
		if d, ok := parseTime(raw); ok {
			duration = d
		}
	} else if len(args) > 1 {
		if d, ok := parseTime(args[1]); ok {
			duration = d
			reasonStart = 2
		}
	}
	if duration > maxTimeout {
		duration = maxTimeout
	}
	reason := reasonFrom(c, args, reasonStart)

	until := time.Now().Add(duration)
	if err := b.actions.Timeout(c.Guild.ID, target.User.ID, &until); err != nil {
		return fmt.Errorf("mute %s: %w", target.User.ID, err)
	}

	caseID := b.cases.Create(c.Guild.ID, modlog.ActionMute, modlogUser(target.User), modlogUser(c.User), reason, formatDuration(duration))
	return replyEmbed(c, b.moderationEmbed(string(modlog.ActionMute), target.User, c.User, reason, caseID))
}

func (b *Bot) cmdUnmute(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	reason := reasonFrom(c, args, 1)

	if err := b.actions.Timeout(c.Guild.ID, target.User.ID, nil); err != nil {
		return fmt.Errorf("unmute %s: %w", target.User.ID, err)
	}

	caseID := b.cases.Create(c.Guild.ID, modlog.ActionUnmute, modlogUser(target.User), modlogUser(c.User), reason, "")
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Unmuted %s (Case #%d)", target.User.String(), caseID)))
}

// cmdWarn records a warning against the member and a matching case, and
// offers the moderator a button to cancel the warning.
func (b *Bot) cmdWarn(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	if err := b.requireCanModerate(c, target); err != nil {
		return err
	}
	reason := reasonFrom(c, args, 1)

	warnID := strconv.FormatInt(time.Now().UnixNano(), 36)
	count := b.store.AddWarning(c.Guild.ID, target.User.ID, state.Warning{
		ID:           warnID,
		UserID:       target.User.ID,
		UserTag:      target.User.String(),
		ModeratorID:  c.User.ID,
		ModeratorTag: c.User.String(),
		Reason:       reason,
		CreatedAt:    time.Now(),
	})
	caseID := b.cases.Create(c.Guild.ID, modlog.ActionWarn, modlogUser(target.User), modlogUser(c.User), reason, "")

	embed := b.moderationEmbed(string(modlog.ActionWarn), target.User, c.User, reason, caseID)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Warning %d for this user", count)}

	return c.Reply(router.Reply{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Cancel",
						Style:    discordgo.DangerButton,
						CustomID: "cancel_warn_" + warnID,
					},
				},
			},
		},
	})
}

// cmdSoftban bans with message pruning and immediately unbans, as a kick
// that also clears recent messages.
func (b *Bot) cmdSoftban(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	if err := b.requireCanModerate(c, target); err != nil {
		return err
	}
	reason := reasonFrom(c, args, 1)

	if err := b.actions.Ban(c.Guild.ID, target.User.ID, reason, 7); err != nil {
		return fmt.Errorf("softban %s: %w", target.User.ID, err)
	}
	if err := b.actions.Unban(c.Guild.ID, target.User.ID); err != nil {
		return fmt.Errorf("softban unban %s: %w", target.User.ID, err)
	}

	caseID := b.cases.Create(c.Guild.ID, modlog.ActionSoftban, modlogUser(target.User), modlogUser(c.User), reason, "")
	return replyEmbed(c, b.moderationEmbed(string(modlog.ActionSoftban), target.User, c.User, reason, caseID))
}

func (b *Bot) cmdLock(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}

	if err := b.actions.LockChannel(c.ChannelID, c.Guild.ID); err != nil {
		return fmt.Errorf("lock channel %s: %w", c.ChannelID, err)
	}

	if raw := stringArg(c, "time", args, 0); raw != "" {
		if duration, ok := parseTime(raw); ok {
			channelID, everyoneID := c.ChannelID, c.Guild.ID
			b.sched.After(duration, "unlock", func() {
				if err := b.actions.UnlockChannel(channelID, everyoneID); err != nil {
					b.logger.Warn("scheduled unlock failed", zap.String("channel", channelID), zap.Error(err))
				}
			})
			return replyEmbed(c, b.successEmbed(fmt.Sprintf("Channel locked for %s.", formatDuration(duration))))
		}
	}
	return replyEmbed(c, b.successEmbed("Channel locked."))
}

func (b *Bot) cmdUnlock(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	if err := b.actions.UnlockChannel(c.ChannelID, c.Guild.ID); err != nil {
		return fmt.Errorf("unlock channel %s: %w", c.ChannelID, err)
	}
	return replyEmbed(c, b.successEmbed("Channel unlocked."))
}

// cmdClean removes the bot's own recent messages from the channel.
func (b *Bot) cmdClean(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	if b.session == nil || b.session.State == nil || b.session.State.User == nil {
		return router.Rejectf("Not connected.")
	}

	messages, err := b.session.ChannelMessages(c.ChannelID, 100, "", "", "")
	if err != nil {
		return fmt.Errorf("fetch messages in %s: %w", c.ChannelID, err)
	}

	var mine []string
	for _, msg := range messages {
		if msg.Author != nil && msg.Author.ID == b.session.State.User.ID {
			mine = append(mine, msg.ID)
		}
	}
	if len(mine) == 0 {
		return replyEmbed(c, b.warningEmbed("Nothing to clean up."))
	}
	if err := b.session.ChannelMessagesBulkDelete(c.ChannelID, mine); err != nil {
		return fmt.Errorf("bulk delete in %s: %w", c.ChannelID, err)
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Removed %d of my messages.", len(mine))))
}

func (b *Bot) cmdDeafen(c *router.Context, args []string) error {
	return b.setDeafen(c, args, true)
}

func (b *Bot) cmdUndeafen(c *router.Context, args []string) error {
	return b.setDeafen(c, args, false)
}

func (b *Bot) setDeafen(c *router.Context, args []string, deaf bool) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	if err := b.requireCanModerate(c, target); err != nil {
		return err
	}

	if err := b.actions.SetDeafen(c.Guild.ID, target.User.ID, deaf); err != nil {
		return fmt.Errorf("deafen %s: %w", target.User.ID, err)
	}

	verb := "Deafened"
	if !deaf {
		verb = "Undeafened"
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("%s %s.", verb, target.User.String())))
}
