package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Actions is the slice of the platform API that moderation commands mutate
// through. Commands go through this seam instead of the session so outcomes
// can be observed in tests.
type Actions interface {
	Ban(guildID, userID, reason string, deleteDays int) error
	Unban(guildID, userID string) error
	Kick(guildID, userID, reason string) error
	Timeout(guildID, userID string, until *time.Time) error
	SetDeafen(guildID, userID string, deaf bool) error
	LockChannel(channelID, everyoneRoleID string) error
	UnlockChannel(channelID, everyoneRoleID string) error
	SendMessage(channelID, content string) (messageID string, err error)
	DeleteMessage(channelID, messageID string) error
}

type sessionActions struct {
	session *discordgo.Session
}

func (a *sessionActions) Ban(guildID, userID, reason string, deleteDays int) error {
	return a.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays)
}

func (a *sessionActions) Unban(guildID, userID string) error {
	return a.session.GuildBanDelete(guildID, userID)
}

func (a *sessionActions) Kick(guildID, userID, reason string) error {
	return a.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (a *sessionActions) Timeout(guildID, userID string, until *time.Time) error {
	return a.session.GuildMemberTimeout(guildID, userID, until)
}

func (a *sessionActions) SetDeafen(guildID, userID string, deaf bool) error {
	return a.session.GuildMemberDeafen(guildID, userID, deaf)
}

func (a *sessionActions) LockChannel(channelID, everyoneRoleID string) error {
	return a.session.ChannelPermissionSet(channelID, everyoneRoleID,
		discordgo.PermissionOverwriteTypeRole, 0, discordgo.PermissionSendMessages)
}

func (a *sessionActions) UnlockChannel(channelID, everyoneRoleID string) error {
	return a.session.ChannelPermissionDelete(channelID, everyoneRoleID)
}

func (a *sessionActions) SendMessage(channelID, content string) (string, error) {
	msg, err := a.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (a *sessionActions) DeleteMessage(channelID, messageID string) error {
	return a.session.ChannelMessageDelete(channelID, messageID)
}
