package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"aura/internal/router"

	"github.com/bwmarrin/discordgo"
)

// cmdRanks lists the self-assignable roles.
func (b *Bot) cmdRanks(c *router.Context, args []string) error {
	ranks := b.store.Ranks(c.Guild.ID)
	if len(ranks) == 0 {
		return replyEmbed(c, b.infoEmbed("Ranks", "No self-assignable ranks are set up."))
	}

	names := make([]string, 0, len(ranks))
	for _, name := range ranks {
		names = append(names, name)
	}
	sort.Strings(names)
	return replyEmbed(c, b.infoEmbed(fmt.Sprintf("Ranks (%d)", len(names)), strings.Join(names, "\n")))
}

func (b *Bot) cmdAddRank(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	role := b.guildRole(c, "role", args, 0)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}

	b.store.AddRank(c.Guild.ID, role.ID, role.Name)
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Members can now join **%s** with the rank command.", role.Name)))
}

func (b *Bot) cmdDelRank(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	role := b.guildRole(c, "role", args, 0)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}
	if !b.store.IsRank(c.Guild.ID, role.ID) {
		return router.Rejectf("That role is not a rank.")
	}

	b.store.RemoveRank(c.Guild.ID, role.ID)
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("**%s** is no longer self-assignable.", role.Name)))
}

// cmdRank toggles a self-assignable rank on the caller.
func (b *Bot) cmdRank(c *router.Context, args []string) error {
	role := b.guildRole(c, "role", args, 0)
	if role == nil || !b.store.IsRank(c.Guild.ID, role.ID) {
		return router.Rejectf("That is not a joinable rank. See the ranks command.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	for _, held := range c.Member.Roles {
		if held == role.ID {
			if err := b.session.GuildMemberRoleRemove(c.Guild.ID, c.User.ID, role.ID); err != nil {
				return fmt.Errorf("remove rank %s: %w", role.ID, err)
			}
			return replyEmbed(c, b.successEmbed(fmt.Sprintf("You left **%s**.", role.Name)))
		}
	}
	if err := b.session.GuildMemberRoleAdd(c.Guild.ID, c.User.ID, role.ID); err != nil {
		return fmt.Errorf("add rank %s: %w", role.ID, err)
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("You joined **%s**.", role.Name)))
}

func (b *Bot) cmdAddRole(c *router.Context, args []string) error {
	return b.changeRole(c, args, true)
}

func (b *Bot) cmdDelRole(c *router.Context, args []string) error {
	return b.changeRole(c, args, false)
}

func (b *Bot) changeRole(c *router.Context, args []string, add bool) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}
	role := b.guildRole(c, "role", args, 1)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	if add {
		if err := b.session.GuildMemberRoleAdd(c.Guild.ID, target.User.ID, role.ID); err != nil {
			return fmt.Errorf("add role %s to %s: %w", role.ID, target.User.ID, err)
		}
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Gave **%s** to %s.", role.Name, target.User.String())))
	}
	if err := b.session.GuildMemberRoleRemove(c.Guild.ID, target.User.ID, role.ID); err != nil {
		return fmt.Errorf("remove role %s from %s: %w", role.ID, target.User.ID, err)
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Removed **%s** from %s.", role.Name, target.User.String())))
}

// cmdRole applies a batch of role changes to one member. Tokens prefixed
// with + are added and tokens prefixed with - are removed. The add, remove
// and status subcommands cover the single-role forms.
func (b *Bot) cmdRole(c *router.Context, args []string) error {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "add":
			return b.changeRole(c, args[1:], true)
		case "remove":
			return b.changeRole(c, args[1:], false)
		case "status":
			return b.roleStatus(c, args[1:])
		}
	}
	if err := b.requireManager(c); err != nil {
		return err
	}
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	tokens := args
	if len(tokens) > 0 {
		tokens = tokens[1:]
	}
	if c.Options != nil {
		if changes := c.Options.String("changes"); changes != "" {
			tokens = strings.Fields(changes)
		}
	}
	if len(tokens) == 0 {
		return router.Rejectf("List the changes as +role and -role tokens.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	var applied, skipped []string
	for _, token := range tokens {
		add := strings.HasPrefix(token, "+")
		if !add && !strings.HasPrefix(token, "-") {
			skipped = append(skipped, token)
			continue
		}
		role := roleByToken(c.Guild, token[1:])
		if role == nil {
			skipped = append(skipped, token)
			continue
		}
		var err error
		if add {
			err = b.session.GuildMemberRoleAdd(c.Guild.ID, target.User.ID, role.ID)
		} else {
			err = b.session.GuildMemberRoleRemove(c.Guild.ID, target.User.ID, role.ID)
		}
		if err != nil {
			skipped = append(skipped, token)
			continue
		}
		applied = append(applied, token)
	}

	if len(applied) == 0 {
		return router.Rejectf("No role changes could be applied.")
	}
	desc := fmt.Sprintf("Applied to %s: %s", target.User.String(), strings.Join(applied, " "))
	if len(skipped) > 0 {
		desc += fmt.Sprintf("\nSkipped: %s", strings.Join(skipped, " "))
	}
	return replyEmbed(c, b.successEmbed(desc))
}

// roleStatus lists the roles a member currently holds.
func (b *Bot) roleStatus(c *router.Context, args []string) error {
	target := b.targetMember(c, "user", args, 0)
	if target == nil {
		return router.Rejectf("Please mention a valid member of this server.")
	}

	names := make([]string, 0, len(target.Roles))
	for _, id := range target.Roles {
		if role := roleByToken(c.Guild, id); role != nil {
			names = append(names, role.Name)
		}
	}
	if len(names) == 0 {
		return replyEmbed(c, b.infoEmbed("Roles", fmt.Sprintf("%s holds no roles.", target.User.String())))
	}
	sort.Strings(names)
	title := fmt.Sprintf("Roles for %s (%d)", target.User.String(), len(names))
	return replyEmbed(c, b.infoEmbed(title, strings.Join(names, "\n")))
}

// roleByToken resolves a single role token as an ID or a case-insensitive
// name, without consuming the rest of the argument list the way guildRole
// does.
func roleByToken(guild *discordgo.Guild, token string) *discordgo.Role {
	if guild == nil || token == "" {
		return nil
	}
	token = stripMention(token)
	for _, role := range guild.Roles {
		if role == nil {
			continue
		}
		if role.ID == token || strings.EqualFold(role.Name, token) {
			return role
		}
	}
	return nil
}

func (b *Bot) cmdRoleName(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	role := b.guildRole(c, "role", args[:min(len(args), 1)], 0)
	if role == nil {
		return router.Rejectf("Please mention the role to rename.")
	}
	name := restArg(c, "name", args, 1)
	if name == "" {
		return router.Rejectf("Please give the new name.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	if _, err := b.session.GuildRoleEdit(c.Guild.ID, role.ID, &discordgo.RoleParams{Name: name}); err != nil {
		return fmt.Errorf("rename role %s: %w", role.ID, err)
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Renamed **%s** to **%s**.", role.Name, name)))
}

func (b *Bot) cmdRoleColor(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	role := b.guildRole(c, "role", args[:min(len(args), 1)], 0)
	if role == nil {
		return router.Rejectf("Please mention the role to recolor.")
	}
	raw := stringArg(c, "color", args, 1)
	color, ok := parseHexColor(raw)
	if !ok {
		return router.Rejectf("Please give the color as hex, like #ff8800.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	if _, err := b.session.GuildRoleEdit(c.Guild.ID, role.ID, &discordgo.RoleParams{Color: &color}); err != nil {
		return fmt.Errorf("recolor role %s: %w", role.ID, err)
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Changed the color of **%s** to #%06X.", role.Name, color)))
}

func (b *Bot) cmdMentionable(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}
	role := b.guildRole(c, "role", args, 0)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	next := !role.Mentionable
	if _, err := b.session.GuildRoleEdit(c.Guild.ID, role.ID, &discordgo.RoleParams{Mentionable: &next}); err != nil {
		return fmt.Errorf("toggle mentionable on %s: %w", role.ID, err)
	}
	if next {
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("**%s** is now mentionable.", role.Name)))
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("**%s** is no longer mentionable.", role.Name)))
}

func (b *Bot) cmdSetNick(c *router.Context, args []string) error {
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
	nick := restArg(c, "nickname", args, 1)
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	if err := b.session.GuildMemberNickname(c.Guild.ID, target.User.ID, nick); err != nil {
		return fmt.Errorf("set nickname for %s: %w", target.User.ID, err)
	}
	if nick == "" {
		return replyEmbed(c, b.successEmbed(fmt.Sprintf("Reset the nickname of %s.", target.User.String())))
	}
	return replyEmbed(c, b.successEmbed(fmt.Sprintf("Changed the nickname of %s to **%s**.", target.User.String(), nick)))
}

// cmdAnnounce posts an announcement embed to the mentioned channel.
func (b *Bot) cmdAnnounce(c *router.Context, args []string) error {
	if err := b.requireManager(c); err != nil {
		return err
	}

	channelID := ""
	if c.Options != nil {
		if channel := c.Options.Channel("channel"); channel != nil {
			channelID = channel.ID
		}
	}
	start := 0
	if channelID == "" && len(args) > 0 {
		if id := stripMention(args[0]); isSnowflake(id) {
			channelID = id
			start = 1
		}
	}
	if channelID == "" {
		channelID = c.ChannelID
	}
	text := restArg(c, "message", args, start)
	if text == "" {
		return router.Rejectf("Please give the announcement text.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	embed := b.infoEmbed("📢 Announcement", text)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("From %s", c.User.String())}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("announce in %s: %w", channelID, err)
	}
	return c.Reply(router.Reply{Content: "Announcement sent.", Ephemeral: true})
}

// cmdPurge bulk-deletes the last N messages in the channel.
func (b *Bot) cmdPurge(c *router.Context, args []string) error {
	if err := b.requireModerator(c); err != nil {
		return err
	}

	count := 0
	if c.Options != nil {
		count = int(c.Options.Int("count"))
	}
	if count == 0 && len(args) > 0 {
		count, _ = strconv.Atoi(args[0])
	}
	if count < 1 || count > 100 {
		return router.Rejectf("Please give a message count between 1 and 100.")
	}
	if b.session == nil {
		return router.Rejectf("Not connected.")
	}

	messages, err := b.session.ChannelMessages(c.ChannelID, count, "", "", "")
	if err != nil {
		return fmt.Errorf("fetch messages in %s: %w", c.ChannelID, err)
	}
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if err := b.session.ChannelMessagesBulkDelete(c.ChannelID, ids); err != nil {
		return fmt.Errorf("bulk delete in %s: %w", c.ChannelID, err)
	}
	return c.Reply(router.Reply{Content: fmt.Sprintf("Deleted %d messages.", len(ids)), Ephemeral: true})
}

func (b *Bot) cmdRoles(c *router.Context, args []string) error {
	roles := make([]*discordgo.Role, 0, len(c.Guild.Roles))
	for _, role := range c.Guild.Roles {
		if role != nil && role.ID != c.Guild.ID {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return replyEmbed(c, b.infoEmbed("Roles", "This server has no roles."))
	}

	sort.Slice(roles, func(i, j int) bool { return roles[i].Position > roles[j].Position })
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.Name
	}
	return replyEmbed(c, b.infoEmbed(fmt.Sprintf("Roles (%d)", len(names)), strings.Join(names, ", ")))
}

func (b *Bot) cmdRoleInfo(c *router.Context, args []string) error {
	role := b.guildRole(c, "role", args, 0)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}

	holders := 0
	for _, member := range c.Guild.Members {
		for _, id := range member.Roles {
			if id == role.ID {
				holders++
				break
			}
		}
	}

	embed := b.infoEmbed(role.Name, "")
	embed.Color = role.Color
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "ID", Value: role.ID, Inline: true},
		{Name: "Color", Value: fmt.Sprintf("#%06X", role.Color), Inline: true},
		{Name: "Position", Value: strconv.Itoa(role.Position), Inline: true},
		{Name: "Mentionable", Value: strconv.FormatBool(role.Mentionable), Inline: true},
		{Name: "Hoisted", Value: strconv.FormatBool(role.Hoist), Inline: true},
		{Name: "Members", Value: strconv.Itoa(holders), Inline: true},
	}
	return replyEmbed(c, embed)
}

// cmdMembers lists members holding the given role, from the cached member
// set.
func (b *Bot) cmdMembers(c *router.Context, args []string) error {
	role := b.guildRole(c, "role", args, 0)
	if role == nil {
		return router.Rejectf("Please name a role in this server.")
	}

	var tags []string
	for _, member := range c.Guild.Members {
		if member == nil || member.User == nil {
			continue
		}
		for _, id := range member.Roles {
			if id == role.ID {
				tags = append(tags, member.User.String())
				break
			}
		}
	}
	if len(tags) == 0 {
		return replyEmbed(c, b.infoEmbed(role.Name, "Nobody holds this role."))
	}
	sort.Strings(tags)
	total := len(tags)
	if total > 50 {
		tags = append(tags[:50], fmt.Sprintf("... and %d more", total-50))
	}
	return replyEmbed(c, b.infoEmbed(fmt.Sprintf("Members with %s (%d)", role.Name, total), strings.Join(tags, "\n")))
}

func parseHexColor(raw string) (int, bool) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(raw) != 6 {
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(value), true
}
