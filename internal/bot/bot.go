package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aura/internal/access"
	"aura/internal/config"
	"aura/internal/guildconfig"
	"aura/internal/lookup"
	"aura/internal/modlog"
	"aura/internal/router"
	"aura/internal/schedule"
	"aura/internal/state"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	session   *discordgo.Session
	store     *state.Store
	cases     *modlog.Log
	guilds    *guildconfig.Store
	router    *router.Router
	prefixes  *prefixSource
	sched     *schedule.Scheduler
	lookup    *lookup.Client
	actions   Actions
	startedAt time.Time
}

func New(cfg config.Config, logger *zap.Logger, store *state.Store, cases *modlog.Log, guilds *guildconfig.Store, lookupClient *lookup.Client) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		session:   session,
		store:     store,
		cases:     cases,
		guilds:    guilds,
		sched:     schedule.New(logger),
		lookup:    lookupClient,
		startedAt: time.Now(),
	}
	b.actions = &sessionActions{session: session}
	b.router = b.buildRouter()

	return b, nil
}

func (b *Bot) buildRouter() *router.Router {
	b.prefixes = &prefixSource{guilds: b.guilds, logger: b.logger}
	r := router.New(b.logger, b.prefixes, b.cfg.Prefixes)
	r.SetRejectDecorator(func(message string) router.Reply {
		return router.Reply{Embeds: []*discordgo.MessageEmbed{b.errorEmbed(message)}, Ephemeral: true}
	})
	r.SetSideChannel(b.handleSideChannels)
	b.registerHandlers(r)
	return r
}

func (b *Bot) registerHandlers(r *router.Router) {
	// Moderation and case log.
	r.Register("ban", b.cmdBan)
	r.Register("unban", b.cmdUnban)
	r.Register("kick", b.cmdKick)
	r.Register("mute", b.cmdMute)
	r.Register("unmute", b.cmdUnmute)
	r.Register("warn", b.cmdWarn)
	r.Register("softban", b.cmdSoftban)
	r.Register("lock", b.cmdLock)
	r.Register("unlock", b.cmdUnlock)
	r.Register("clean", b.cmdClean)
	r.Register("deafen", b.cmdDeafen)
	r.Register("undeafen", b.cmdUndeafen)
	r.Register("warnings", b.cmdWarnings)
	r.Register("checkwarnings", b.cmdWarnings)
	r.Register("clearwarn", b.cmdClearwarn)
	r.Register("delwarn", b.cmdDelwarn)
	r.Register("removewarnings", b.cmdDelwarn)
	r.Register("modlogs", b.cmdModlogs)
	r.Register("case", b.cmdCase)
	r.Register("reason", b.cmdReason)
	r.Register("notes", b.cmdNotes)
	r.Register("note", b.cmdNote)
	r.Register("delnote", b.cmdDelnote)
	r.Register("clearnotes", b.cmdClearnotes)

	// Features.
	r.Register("afk", b.cmdAFK)
	r.Register("poll", b.cmdPoll)
	r.Register("roll", b.cmdRoll)
	r.Register("giveaway", b.cmdGiveaway)
	r.Register("highlights", b.cmdHighlights)
	r.Register("rolepersist", b.cmdRolePersist)
	r.Register("prefix", b.cmdPrefix)
	r.Register("modrole", b.cmdModRole)
	r.Register("ignorechannel", b.cmdIgnoreChannel)
	r.Register("ignoreuser", b.cmdIgnoreUser)
	r.Register("ignorerole", b.cmdIgnoreRole)
	r.Register("remindme", b.cmdRemindMe)

	// Roles and guild management.
	r.Register("ranks", b.cmdRanks)
	r.Register("addrank", b.cmdAddRank)
	r.Register("delrank", b.cmdDelRank)
	r.Register("rank", b.cmdRank)
	r.Register("role", b.cmdRole)
	r.Register("addrole", b.cmdAddRole)
	r.Register("delrole", b.cmdDelRole)
	r.Register("rolename", b.cmdRoleName)
	r.Register("rolecolor", b.cmdRoleColor)
	r.Register("mentionable", b.cmdMentionable)
	r.Register("setnick", b.cmdSetNick)
	r.Register("announce", b.cmdAnnounce)
	r.Register("purge", b.cmdPurge)
	r.Register("roles", b.cmdRoles)
	r.Register("roleinfo", b.cmdRoleInfo)
	r.Register("members", b.cmdMembers)

	// Info and fun.
	r.Register("whois", b.cmdWhois)
	r.Register("serverinfo", b.cmdServerInfo)
	r.Register("membercount", b.cmdMemberCount)
	r.Register("avatar", b.cmdAvatar)
	r.Register("emotes", b.cmdEmotes)
	r.Register("uptime", b.cmdUptime)
	r.Register("info", b.cmdInfo)
	r.Register("flip", b.cmdFlip)
	r.Register("flipcoin", b.cmdFlip)
	r.Register("rps", b.cmdRPS)
	r.Register("randomcolor", b.cmdRandomColor)
	r.Register("color", b.cmdColor)
	r.Register("distance", b.cmdDistance)

	// External lookups.
	r.Register("cat", b.cmdCat)
	r.Register("dog", b.cmdDog)
	r.Register("pug", b.cmdPug)
	r.Register("dadjoke", b.cmdDadJoke)
	r.Register("norris", b.cmdNorris)
	r.Register("pokemon", b.cmdPokemon)
	r.Register("github", b.cmdGithub)
	r.Register("space", b.cmdSpace)
	r.Register("itunes", b.cmdItunes)
	r.Register("covid", b.cmdCovid)
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onMessageReactionAdd)
	b.session.AddHandler(b.onMessageReactionRemove)

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close() {
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)),
		zap.Strings("default_prefixes", b.cfg.Prefixes))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil {
		return
	}

	c := b.messageContext(msg)
	if b.ignored(c) {
		return
	}
	b.router.DispatchMessage(c, msg.ID, msg.Content, msg.Author.Bot, msg.Mentions)
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		c := b.interactionContext(interaction)
		if c == nil {
			return
		}
		b.router.DispatchInteraction(c, interaction.ApplicationCommandData().Name)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(interaction)
	}
}

// handleComponent handles the warn-cancel button. Cancelling a warning that
// is already gone is reported, not treated as an error.
func (b *Bot) handleComponent(interaction *discordgo.InteractionCreate) {
	data := interaction.MessageComponentData()
	if !strings.HasPrefix(data.CustomID, "cancel_warn_") || interaction.GuildID == "" {
		return
	}

	warnID := strings.TrimPrefix(data.CustomID, "cancel_warn_")
	content := "Warning not found or already processed."
	if b.store.CancelWarning(interaction.GuildID, warnID) {
		content = "Warning cancelled by moderator."
	}

	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		b.logger.Warn("warn cancel update failed", zap.Error(err))
	}
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.User == nil || !b.store.RolePersistEnabled(event.GuildID) {
		return
	}
	for _, roleID := range b.store.PersistedRoles(event.GuildID, event.User.ID) {
		if err := session.GuildMemberRoleAdd(event.GuildID, event.User.ID, roleID); err != nil {
			b.logger.Debug("role persist restore failed",
				zap.String("guild", event.GuildID),
				zap.String("user", event.User.ID),
				zap.String("role", roleID),
				zap.Error(err))
		}
	}
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.User == nil || event.Member == nil || !b.store.RolePersistEnabled(event.GuildID) {
		return
	}
	b.store.SnapshotRoles(event.GuildID, event.User.ID, event.Member.Roles)
}

func (b *Bot) onMessageReactionAdd(session *discordgo.Session, event *discordgo.MessageReactionAdd) {
	if b.isBotUser(event.UserID) {
		return
	}
	if index := pollEmojiIndex(event.Emoji.Name); index >= 0 {
		b.store.AddPollVote(event.MessageID, index)
	}
}

func (b *Bot) onMessageReactionRemove(session *discordgo.Session, event *discordgo.MessageReactionRemove) {
	if b.isBotUser(event.UserID) {
		return
	}
	if index := pollEmojiIndex(event.Emoji.Name); index >= 0 {
		b.store.RemovePollVote(event.MessageID, index)
	}
}

// ignored reports whether the message should be dropped because its channel,
// author, or one of the author's roles is on the guild's ignore lists.
// Managers bypass the lists so they can always undo them.
func (b *Bot) ignored(c *router.Context) bool {
	if c.Guild == nil || c.User == nil {
		return false
	}
	guildID := c.Guild.ID
	hit := b.store.IsChannelIgnored(guildID, c.ChannelID) || b.store.IsUserIgnored(guildID, c.User.ID)
	if !hit && c.Member != nil {
		hit = b.store.IsRoleIgnored(guildID, c.Member.Roles)
	}
	if !hit {
		return false
	}
	return !access.Manager(memberSnapshot(c.Guild, c.Member))
}

func (b *Bot) isBotUser(userID string) bool {
	return b.session != nil && b.session.State != nil && b.session.State.User != nil && b.session.State.User.ID == userID
}

// handleSideChannels runs for every admitted guild message, before and
// independent of prefix resolution: AFK auto-clear, AFK mention notices, and
// highlight scanning.
func (b *Bot) handleSideChannels(c *router.Context, content string, mentions []*discordgo.User) {
	if c.Guild == nil || c.User == nil {
		return
	}
	guildID := c.Guild.ID

	if afk, ok := b.store.AFKStatus(guildID, c.User.ID); ok && !afk.Ignores(c.ChannelID) {
		b.store.ClearAFK(guildID, c.User.ID)
		b.sendTransient(c, "Welcome back! Your AFK status has been removed.", 5*time.Second)
	}

	for _, mentioned := range mentions {
		if mentioned == nil {
			continue
		}
		afk, ok := b.store.AFKStatus(guildID, mentioned.ID)
		if !ok || afk.Ignores(c.ChannelID) {
			continue
		}
		elapsed := formatElapsed(time.Since(afk.Since))
		notice := fmt.Sprintf("%s is currently AFK: %s (%s)", mentioned.String(), afk.Status, elapsed)
		b.sendTransient(c, notice, 10*time.Second)
	}

	b.scanHighlights(c, content)
}

// sendTransient posts a channel notice and schedules its removal. When the
// platform send fails the notice falls back to the context reply and stays.
func (b *Bot) sendTransient(c *router.Context, content string, ttl time.Duration) {
	messageID, err := b.actions.SendMessage(c.ChannelID, content)
	if err != nil || messageID == "" {
		_ = c.Reply(router.Reply{Content: content})
		return
	}
	channelID := c.ChannelID
	b.sched.After(ttl, "notice cleanup", func() {
		_ = b.actions.DeleteMessage(channelID, messageID)
	})
}

// scanHighlights notifies members whose registered phrases appear in the
// message, one notice per user on their first matching phrase. Delivery is
// best effort.
func (b *Bot) scanHighlights(c *router.Context, content string) {
	lowered := strings.ToLower(content)
	for userID, phrases := range b.store.AllHighlights(c.Guild.ID) {
		if userID == c.User.ID {
			continue
		}
		for _, phrase := range phrases {
			if !strings.Contains(lowered, phrase) {
				continue
			}
			b.sendHighlight(c, userID, content)
			break
		}
	}
}

func (b *Bot) sendHighlight(c *router.Context, userID, content string) {
	if b.session == nil {
		return
	}
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		b.logger.Debug("highlight channel failed", zap.String("user", userID), zap.Error(err))
		return
	}
	if len(content) > 1900 {
		content = content[:1900]
	}
	notice := fmt.Sprintf("**Highlight in %s <#%s>**\n```%s```", c.Guild.Name, c.ChannelID, content)
	if _, err := b.session.ChannelMessageSend(channel.ID, notice); err != nil {
		b.logger.Debug("highlight delivery failed", zap.String("user", userID), zap.Error(err))
	}
}

// messageContext adapts a guild text message into the normalized command
// context. Ephemerality does not exist on this path and is dropped.
func (b *Bot) messageContext(msg *discordgo.MessageCreate) *router.Context {
	var guild *discordgo.Guild
	if msg.GuildID != "" && b.session != nil && b.session.State != nil {
		guild, _ = b.session.State.Guild(msg.GuildID)
	}

	member := msg.Member
	if member != nil && member.User == nil {
		member.User = msg.Author
	}

	return &router.Context{
		Session:   b.session,
		Guild:     guild,
		Member:    member,
		User:      msg.Author,
		ChannelID: msg.ChannelID,
		Send: func(r router.Reply) error {
			_, err := b.session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
				Content:    r.Content,
				Embeds:     r.Embeds,
				Components: r.Components,
				Files:      r.Files,
				Reference:  msg.Reference(),
			})
			return err
		},
	}
}

// interactionContext adapts an application command interaction. The first
// reply becomes the interaction response; later ones become followups.
func (b *Bot) interactionContext(interaction *discordgo.InteractionCreate) *router.Context {
	if interaction.Member == nil || interaction.Member.User == nil {
		return nil
	}

	var guild *discordgo.Guild
	if b.session != nil && b.session.State != nil {
		guild, _ = b.session.State.Guild(interaction.GuildID)
	}

	responded := false
	return &router.Context{
		Session:   b.session,
		Guild:     guild,
		Member:    interaction.Member,
		User:      interaction.Member.User,
		ChannelID: interaction.ChannelID,
		Options: &interactionOptions{
			session: b.session,
			guildID: interaction.GuildID,
			data:    interaction.ApplicationCommandData(),
		},
		Send: func(r router.Reply) error {
			var flags discordgo.MessageFlags
			if r.Ephemeral {
				flags = discordgo.MessageFlagsEphemeral
			}
			if responded {
				_, err := b.session.FollowupMessageCreate(interaction.Interaction, true, &discordgo.WebhookParams{
					Content:    r.Content,
					Embeds:     r.Embeds,
					Components: r.Components,
					Files:      r.Files,
					Flags:      flags,
				})
				return err
			}
			responded = true
			return b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content:    r.Content,
					Embeds:     r.Embeds,
					Components: r.Components,
					Files:      r.Files,
					Flags:      flags,
				},
			})
		},
	}
}

// interactionOptions resolves typed slash-command options by name.
type interactionOptions struct {
	session *discordgo.Session
	guildID string
	data    discordgo.ApplicationCommandInteractionData
}

func (o *interactionOptions) get(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range o.data.Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func (o *interactionOptions) String(name string) string {
	if opt := o.get(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func (o *interactionOptions) Int(name string) int64 {
	if opt := o.get(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionInteger {
		return opt.IntValue()
	}
	return 0
}

func (o *interactionOptions) Bool(name string) bool {
	if opt := o.get(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionBoolean {
		return opt.BoolValue()
	}
	return false
}

func (o *interactionOptions) User(name string) *discordgo.User {
	if opt := o.get(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionUser {
		return opt.UserValue(o.session)
	}
	return nil
}

func (o *interactionOptions) Channel(name string) *discordgo.Channel {
	if opt := o.get(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionChannel {
		return opt.ChannelValue(o.session)
	}
	return nil
}

func (o *interactionOptions) Role(name string) *discordgo.Role {
	if opt := o.get(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionRole {
		return opt.RoleValue(o.session, o.guildID)
	}
	return nil
}

// prefixSource adapts the guild settings store to the router. Lookup
// failures degrade to the default prefixes rather than blocking dispatch.
type prefixSource struct {
	guilds *guildconfig.Store
	logger *zap.Logger
}

func (p *prefixSource) Prefixes(guildID string) []string {
	if p.guilds == nil {
		return nil
	}
	prefixes, err := p.guilds.Prefixes(context.Background(), guildID)
	if err != nil {
		p.logger.Warn("prefix lookup failed", zap.String("guild", guildID), zap.Error(err))
		return nil
	}
	return prefixes
}

// moderatorRoles answers the guild's configured moderator role set, empty on
// any failure. The platform-permission half of the moderator check still
// applies when this comes back empty.
func (b *Bot) moderatorRoles(guildID string) []string {
	if b.guilds == nil {
		return nil
	}
	roles, err := b.guilds.ModeratorRoles(context.Background(), guildID)
	if err != nil {
		b.logger.Warn("moderator role lookup failed", zap.String("guild", guildID), zap.Error(err))
		return nil
	}
	return roles
}

// memberSnapshot computes the permission snapshot the access predicates
// evaluate. Permissions are unioned over the member's roles plus the
// guild-wide everyone role.
func memberSnapshot(guild *discordgo.Guild, member *discordgo.Member) access.Snapshot {
	snap := access.Snapshot{}
	if member == nil || member.User == nil || guild == nil {
		return snap
	}
	snap.UserID = member.User.ID
	snap.RoleIDs = member.Roles
	snap.Owner = guild.OwnerID == member.User.ID

	for _, role := range guild.Roles {
		if role == nil {
			continue
		}
		if role.ID == guild.ID {
			snap.Permissions |= role.Permissions
			continue
		}
		for _, roleID := range member.Roles {
			if roleID == role.ID {
				snap.Permissions |= role.Permissions
				if role.Position > snap.TopRole {
					snap.TopRole = role.Position
				}
				break
			}
		}
	}
	return snap
}

func pollEmojiIndex(name string) int {
	for i, emoji := range pollEmojis {
		if emoji == name {
			return i
		}
	}
	return -1
}

// pollEmojis are the keycap reactions for poll answers. The digit keycaps
// carry the U+FE0F variation selector; the platform rejects the bare form
// and reports reaction events with the selector included.
var pollEmojis = []string{
	"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣",
	"6️⃣", "7️⃣", "8️⃣", "9️⃣", "\U0001f51f",
}
