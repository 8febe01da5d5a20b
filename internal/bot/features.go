package bot

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"aura/internal/router"
	"aura/internal/state"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// cmdAFK sets an away status, manages the channels exempt from AFK handling,
// or lists who is away.
func (b *Bot) cmdAFK(c *router.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "ignore":
		channelID := c.ChannelID
		if c.Options != nil {
			if channel := c.Options.Channel("channel"); channel != nil {
				channelID = channel.ID
			}
		}
		if len(args) > 1 {
			if id := stripMention(args[1]); isSnowflake(id) {
				channelID = id
			}
		}
		if !b.store.IgnoreAFKChannel(c.Guild.ID, c.User.ID, channelID) {
			return router.Rejectf("You are not AFK.")
		}
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("I will not touch your AFK status in <#%s>.", channelID)))

	case "list":
		away := b.store.AFKList(c.Guild.ID)
		if len(away) == 0 {
			return replyEmbed(c, b.infoEmbed("AFK", "Nobody is AFK right now."))
		}
		ids := make([]string, 0, len(away))
		for id := range away {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var lines []string
		for _, id := range ids {
			lines = append(lines, fmt.Sprintf("<@%s>: %s (%s)", id, away[id].Status, formatElapsed(time.Since(away[id].Since))))
		}
		return replyEmbed(c, b.infoEmbed(fmt.Sprintf("AFK members (%d)", len(away)), strings.Join(lines, "\n")))

	default:
		status := restArg(c, "status", args, 0)
		if status == "" {
			status = "AFK"
		}
		b.store.SetAFK(c.Guild.ID, c.User.ID, state.AFK{Status: status, Since: time.Now()})
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("You are now AFK: %s", status)))
	}
}

// cmdPoll creates a reaction poll from "question | option | option" input, or
// reports results for an existing poll message.
func (b *Bot) cmdPoll(c *router.Context, args []string) error {
	if len(args) > 0 && strings.ToLower(args[0]) == "results" {
		return b.pollResults(c, args)
	}

	raw := restArg(c, "poll", args, 0)
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || parts[0] == "" {
		return router.Rejectf("Usage: poll question | first option | second option")
	}
	question, options := parts[0], parts[1:]
	if len(options) > len(pollEmojis) {
		return router.Rejectf("Polls support at most %d options.", len(pollEmojis))
	}

	var lines []string
	for i, option := range options {
		lines = append(lines, fmt.Sprintf("%s %s", pollEmojis[i], option))
	}
	embed := b.infoEmbed(question, strings.Join(lines, "\n"))
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Vote by reacting below"}

	if b.session == nil {
		return router.Rejectf("Not connected.")
	}
	msg, err := b.session.ChannelMessageSendEmbed(c.ChannelID, embed)
	if err != nil {
		return fmt.Errorf("send poll: %w", err)
	}
	for i := range options {
		if err := b.session.MessageReactionAdd(c.ChannelID, msg.ID, pollEmojis[i]); err != nil {
			b.logger.Debug("poll reaction failed", zap.String("message", msg.ID), zap.Error(err))
		}
	}

	b.store.SetPoll(msg.ID, state.Poll{Question: question, Options: options, Votes: map[int]int{}})
	return c.Reply(router.Reply{Content: "Poll created.", Ephemeral: true})
}

func (b *Bot) pollResults(c *router.Context, args []string) error {
	if len(args) < 2 {
		return router.Rejectf("Please give the poll message ID.")
	}
	poll, ok := b.store.Poll(args[1])
	if !ok {
		return router.Rejectf("No poll found for that message.")
	}

	var lines []string
	for i, option := range poll.Options {
		lines = append(lines, fmt.Sprintf("%s %s: %d", pollEmojis[i], option, poll.Votes[i]))
	}
	embed := b.infoEmbed(fmt.Sprintf("Results: %s", poll.Question), strings.Join(lines, "\n"))
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d votes", poll.TotalVotes)}
	return replyEmbed(c, embed)
}

// cmdRoll rolls dice: a bare maximum, or NdM notation.
func (b *Bot) cmdRoll(c *router.Context, args []string) error {
	notation := stringArg(c, "dice", args, 0)
	if notation == "" {
		notation = "100"
	}

	count, sides := 1, 0
	if n, m, ok := strings.Cut(strings.ToLower(notation), "d"); ok {
		count, _ = strconv.Atoi(n)
		sides, _ = strconv.Atoi(m)
	} else {
		sides, _ = strconv.Atoi(notation)
	}
	if count < 1 || count > 100 || sides < 2 || sides > 1000000 {
		return router.Rejectf("Usage: roll 20, or roll 3d6.")
	}

	total := 0
	rolls := make([]string, count)
	for i := 0; i < count; i++ {
		value := rand.Intn(sides) + 1
		total += value
		rolls[i] = strconv.Itoa(value)
	}
	if count == 1 {
		return replyText(c, "🎲 You rolled **%d** (1-%d).", total, sides)
	}
	return replyText(c, "🎲 You rolled **%d** (%s).", total, strings.Join(rolls, ", "))
}

// cmdGiveaway starts a reaction giveaway or ends one early.
func (b *Bot) cmdGiveaway(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	if len(args) > 0 && strings.ToLower(args[0]) == "end" {
		if len(args) < 2 {
			return router.Rejectf("Please give the giveaway message ID.")
		}
		return b.concludeGiveaway(c.ChannelID, args[1])
	}

	if len(args) < 3 {
		return router.Rejectf("Usage: giveaway <time> <winners> <prize>")
	}
	duration, ok := parseTime(args[0])
	if !ok {
		return router.Rejectf("I could not read that duration. Try 1h or 2d.")
	}
	winners, err := strconv.Atoi(args[1])
	if err != nil || winners < 1 || winners > 20 {
		return router.Rejectf("Winner count must be between 1 and 20.")
	}
	prize := strings.Join(args[2:], " ")

	embed := b.infoEmbed("🎉 Giveaway!", fmt.Sprintf("**%s**\nReact with 🎉 to enter!\nEnds in %s. %d winner(s).",
		prize, formatDuration(duration), winners))
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}
	msg, err := b.session.ChannelMessageSendEmbed(c.ChannelID, embed)
	if err != nil {
		return fmt.Errorf("send giveaway: %w", err)
	}
	if err := b.session.MessageReactionAdd(c.ChannelID, msg.ID, "🎉"); err != nil {
		b.logger.Debug("giveaway reaction failed", zap.String("message", msg.ID), zap.Error(err))
	}

	b.store.SetGiveaway(msg.ID, state.Giveaway{
		Prize:     prize,
		Winners:   winners,
		EndsAt:    time.Now().Add(duration),
		ChannelID: c.ChannelID,
		HostID:    c.User.ID,
	})

	channelID, messageID := c.ChannelID, msg.ID
	b.sched.After(duration, "giveaway", func() {
		if err := b.concludeGiveaway(channelID, messageID); err != nil {
			b.logger.Warn("giveaway conclusion failed", zap.String("message", messageID), zap.Error(err))
		}
	})
	return c.Reply(router.Reply{Content: "Giveaway started.", Ephemeral: true})
}

// concludeGiveaway draws winners from the 🎉 reactions and announces them.
// Ending twice is a no-op.
func (b *Bot) concludeGiveaway(channelID, messageID string) error {
	giveaway, ok := b.store.Giveaway(messageID)
	if !ok || b.session == nil {
		return nil
	}
	b.store.DeleteGiveaway(messageID)

	users, err := b.session.MessageReactions(giveaway.ChannelID, messageID, "🎉", 100, "", "")
	if err != nil {
		return fmt.Errorf("fetch entries for %s: %w", messageID, err)
	}

	var entrants []*discordgo.User
	for _, user := range users {
		if user != nil && !user.Bot {
			entrants = append(entrants, user)
		}
	}
	if len(entrants) == 0 {
		_, err := b.session.ChannelMessageSend(giveaway.ChannelID, fmt.Sprintf("Nobody entered the giveaway for **%s**.", giveaway.Prize))
		return err
	}

	rand.Shuffle(len(entrants), func(i, j int) { entrants[i], entrants[j] = entrants[j], entrants[i] })
	count := giveaway.Winners
	if count > len(entrants) {
		count = len(entrants)
	}
	var mentions []string
	for _, winner := range entrants[:count] {
		mentions = append(mentions, winner.Mention())
	}

	_, err = b.session.ChannelMessageSend(giveaway.ChannelID,
		fmt.Sprintf("🎉 Congratulations %s! You won **%s**!", strings.Join(mentions, ", "), giveaway.Prize))
	return err
}

// cmdHighlights manages the caller's highlight phrases.
func (b *Bot) cmdHighlights(c *router.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "add":
		phrase := strings.TrimSpace(strings.Join(args[1:], " "))
		if phrase == "" {
			return router.Rejectf("Please give the phrase to highlight.")
		}
		b.store.AddHighlight(c.Guild.ID, c.User.ID, phrase)
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("I will notify you when %q is mentioned.", strings.ToLower(phrase))))

	case "remove":
		phrase := strings.TrimSpace(strings.Join(args[1:], " "))
		if phrase == "" || !b.store.RemoveHighlight(c.Guild.ID, c.User.ID, phrase) {
			return router.Rejectf("You are not highlighting that phrase.")
		}
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Stopped highlighting %q.", strings.ToLower(phrase))))

	case "clear":
		b.store.ClearHighlights(c.Guild.ID, c.User.ID)
		return replyEmbed(c, b.successEmbed("Cleared all your highlights."))

	default:
		phrases := b.store.Highlights(c.Guild.ID, c.User.ID)
		if len(phrases) == 0 {
			return replyEmbed(c, b.infoEmbed("Highlights", "You have no highlight phrases. Add one with highlights add <phrase>."))
		}
		return replyEmbed(c, b.infoEmbed("Your highlights", strings.Join(phrases, "\n")))
	}
}

// cmdRolePersist toggles restoring a member's roles when they rejoin.
func (b *Bot) cmdRolePersist(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}

	enabled := !b.store.RolePersistEnabled(c.Guild.ID)
	switch strings.ToLower(stringArg(c, "state", args, 0)) {
	case "on", "enable":
		enabled = true
	case "off", "disable":
		enabled = false
	}
	b.store.SetRolePersist(c.Guild.ID, enabled)

	if enabled {
		return replyEmbed(c, b.successEmbed("Role persistence is now on. Members get their roles back when they rejoin."))
	}
	return replyEmbed(c, b.successEmbed("Role persistence is now off."))
}

// cmdPrefix shows the effective prefixes or, for managers, replaces the
// guild's prefix.
func (b *Bot) cmdPrefix(c *router.Context, args []string) error {
	next := stringArg(c, "prefix", args, 0)
	if next == "" {
		prefixes := b.cfg.Prefixes
		if custom := b.prefixes.Prefixes(c.Guild.ID); len(custom) > 0 {
			prefixes = custom
		}
		return replyEmbed(c, b.infoEmbed("Prefix", fmt.Sprintf("My prefixes here: `%s`", strings.Join(prefixes, "` `"))))
	}

	if err := b.requireManager(c); err != nil {
		return err
	}
	if len(next) > 5 {
		return router.Rejectf("Prefixes can be at most 5 characters.")
	}
	if b.guilds == nil {
		return router.Rejectf("Prefix storage is unavailable.")
	}
	if err := b.guilds.SetPrefix(context.Background(), c.Guild.ID, next); err != nil {
		return fmt.Errorf("set prefix for %s: %w", c.Guild.ID, err)
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Prefix changed to `%s`.", next)))
}

// cmdModRole manages the guild's configured moderator role set: members of
// these roles pass the moderator check without any platform permission.
func (b *Bot) cmdModRole(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	if b.guilds == nil {
		return router.Rejectf("Moderator role storage is unavailable.")
	}

	sub := strings.ToLower(stringArg(c, "action", args, 0))
	switch sub {
	case "add":
		role := b.guildRole(c, "role", args, 1)
		if role == nil {
			return router.Rejectf("Please name a role in this server.")
		}
		if err := b.guilds.AddModeratorRole(context.Background(), c.Guild.ID, role.ID); err != nil {
			return fmt.Errorf("add moderator role %s: %w", role.ID, err)
		}
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Members of **%s** can now use moderation commands.", role.Name)))

	case "remove":
		role := b.guildRole(c, "role", args, 1)
		if role == nil {
			return router.Rejectf("Please name a role in this server.")
		}
		if err := b.guilds.RemoveModeratorRole(context.Background(), c.Guild.ID, role.ID); err != nil {
			return fmt.Errorf("remove moderator role %s: %w", role.ID, err)
		}
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("**%s** is no longer a moderator role.", role.Name)))

	default:
		roles, err := b.guilds.ModeratorRoles(context.Background(), c.Guild.ID)
		if err != nil {
			return fmt.Errorf("list moderator roles: %w", err)
		}
		if len(roles) == 0 {
			return replyEmbed(c, b.infoEmbed("Moderator roles", "None configured. Add one with modrole add <role>."))
		}
		var mentions []string
		for _, roleID := range roles {
			mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
		}
		return replyEmbed(c, b.infoEmbed("Moderator roles", strings.Join(mentions, "\n")))
	}
}

func (b *Bot) cmdIgnoreChannel(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	channelID := c.ChannelID
	if c.Options != nil {
		if channel := c.Options.Channel("channel"); channel != nil {
			channelID = channel.ID
		}
	}
	if len(args) > 0 {
		if id := stripMention(args[0]); isSnowflake(id) {
			channelID = id
		}
	}

	if b.store.ToggleIgnoredChannel(c.Guild.ID, channelID) {
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Now ignoring commands in <#%s>.", channelID)))
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("No longer ignoring <#%s>.", channelID)))
}

func (b *Bot) cmdIgnoreUser(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	target := b.targetUser(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	if b.store.ToggleIgnoredUser(c.Guild.ID, target.ID) {
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Now ignoring commands from %s.", target.String())))
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("No longer ignoring %s.", target.String())))
}

func (b *Bot) cmdIgnoreRole(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	role := b.guildRole(c, "role", args, 0)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}

	if b.store.ToggleIgnoredRole(c.Guild.ID, role.ID) {
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Now ignoring commands from members with %s.", role.Name)))
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("No longer ignoring %s.", role.Name)))
}

// cmdRemindMe delivers a direct message after the given delay.
func (b *Bot) cmdRemindMe(c *router.Context, args []string) error {
	if len(args) < 2 {
		return router.Rejectf("Usage: remindme <time> <reminder>")
	}
	duration, ok := parseTime(args[0])
	if !ok {
		return router.Rejectf("I could not read that duration. Try 30m or 2h.")
	}
	text := strings.Join(args[1:], " ")

	userID := c.User.ID
	b.sched.After(duration, "reminder", func() {
		if b.session == nil {
			return
		}
		channel, err := b.session.UserChannelCreate(userID)
		if err != nil {
			b.logger.Debug("reminder channel failed", zap.String("user", userID), zap.Error(err))
			return
		}
		if _, err := b.session.ChannelMessageSend(channel.ID, fmt.Sprintf("⏰ Reminder: %s", text)); err != nil {
			b.logger.Debug("reminder delivery failed", zap.String("user", userID), zap.Error(err))
		}
	})
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("I will remind you in %s.", formatDuration(duration))))
}
