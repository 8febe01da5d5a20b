package bot

import (
	"strings"

	"aura/internal/access"
	"aura/internal/router"

	"github.com/bwmarrin/discordgo"
)

// requireModerator rejects the invocation unless the caller passes the
// moderator predicate for this guild.
func (b *Bot) requireModerator(c *router.Context) error {
	snap := memberSnapshot(c.Guild, c.Member)
	if !access.Moderator(snap, b.moderatorRoles(c.Guild.ID)) {
		return router.Rejectf("You need moderator permissions to use this command.")
	}
	return nil
}

// requireManager rejects unless the caller holds a management permission.
func (b *Bot) requireManager(c *router.Context) error {
	if !access.Manager(memberSnapshot(c.Guild, c.Member)) {
		return router.Rejectf("You need the Manage Server permission to use this command.")
	}
	return nil
}

// requireCanModerate enforces role hierarchy between the caller and target.
func (b *Bot) requireCanModerate(c *router.Context, target *discordgo.Member) error {
	actor := memberSnapshot(c.Guild, c.Member)
	victim := memberSnapshot(c.Guild, target)
	if !access.CanModerate(actor, victim) {
		return router.Rejectf("You cannot moderate that member.")
	}
	return nil
}

// targetUser resolves the subject of a command: the named slash option when
// present, otherwise the mention or ID in args[idx].
func (b *Bot) targetUser(c *router.Context, option string, args []string, idx int) *discordgo.User {
	if c.Options != nil {
		if user := c.Options.User(option); user != nil {
			return user
		}
	}
	if member := b.memberFromArgs(c, args, idx); member != nil {
		return member.User
	}
	return nil
}

// targetMember is targetUser with guild membership required.
func (b *Bot) targetMember(c *router.Context, option string, args []string, idx int) *discordgo.Member {
	if c.Options != nil {
		if user := c.Options.User(option); user != nil {
			return b.guildMember(c, user.ID)
		}
	}
	return b.memberFromArgs(c, args, idx)
}

func (b *Bot) memberFromArgs(c *router.Context, args []string, idx int) *discordgo.Member {
	if idx >= len(args) {
		return nil
	}
	id := stripMention(args[idx])
	if !isSnowflake(id) {
		return nil
	}
	return b.guildMember(c, id)
}

func (b *Bot) guildMember(c *router.Context, userID string) *discordgo.Member {
	if c.Guild != nil {
		for _, member := range c.Guild.Members {
			if member != nil && member.User != nil && member.User.ID == userID {
				return member
			}
		}
	}
	if b.session != nil && c.Guild != nil {
		if member, err := b.session.GuildMember(c.Guild.ID, userID); err == nil {
			return member
		}
	}
	return nil
}

// guildRole resolves a role from a slash option or a mention/ID/name token.
func (b *Bot) guildRole(c *router.Context, option string, args []string, idx int) *discordgo.Role {
	if c.Options != nil {
		if role := c.Options.Role(option); role != nil {
			return role
		}
	}
	if idx >= len(args) || c.Guild == nil {
		return nil
	}

	token := stripMention(args[idx])
	name := strings.ToLower(strings.Join(args[idx:], " "))
	for _, role := range c.Guild.Roles {
		if role == nil {
			continue
		}
		if role.ID == token || strings.ToLower(role.Name) == name {
			return role
		}
	}
	return nil
}

// reasonFrom takes the reason slash option when present, otherwise the rest
// of the args, otherwise the shared default.
func reasonFrom(c *router.Context, args []string, start int) string {
	if c.Options != nil {
		if reason := c.Options.String("reason"); reason != "" {
			return reason
		}
	}
	if start < len(args) {
		if reason := strings.TrimSpace(strings.Join(args[start:], " ")); reason != "" {
			return reason
		}
	}
	return "No reason provided"
}

// stringArg reads a slash option, falling back to a single positional token.
func stringArg(c *router.Context, option string, args []string, idx int) string {
	if c.Options != nil {
		if value := c.Options.String(option); value != "" {
			return value
		}
	}
	if idx < len(args) {
		return args[idx]
	}
	return ""
}

// restArg reads a slash option, falling back to the remaining args joined.
func restArg(c *router.Context, option string, args []string, start int) string {
	if c.Options != nil {
		if value := c.Options.String(option); value != "" {
			return value
		}
	}
	if start < len(args) {
		return strings.TrimSpace(strings.Join(args[start:], " "))
	}
	return ""
}
