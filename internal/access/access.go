// Package access decides who may moderate, manage, and act on whom. The
// predicates are pure functions over snapshots supplied by the caller; they
// never touch the session or the store.
package access

import "github.com/bwmarrin/discordgo"

// Snapshot captures the permission state of one member at evaluation time.
type Snapshot struct {
	UserID      string
	Permissions int64
	RoleIDs     []string
	// TopRole is the position of the member's highest role in the guild's
	// role hierarchy. Higher positions outrank lower ones.
	TopRole int
	Owner   bool
}

// Moderator reports whether the member may use moderation commands: a
// platform-level administrator, guild-management, ban, or kick capability,
// or membership in the guild's configured moderator role set.
func Moderator(member Snapshot, moderatorRoles []string) bool {
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	if member.Permissions&discordgo.PermissionManageServer != 0 {
		return true
	}
	if member.Permissions&discordgo.PermissionBanMembers != 0 {
		return true
	}
	if member.Permissions&discordgo.PermissionKickMembers != 0 {
		return true
	}
	for _, roleID := range member.RoleIDs {
		for _, modRoleID := range moderatorRoles {
			if roleID == modRoleID {
				return true
			}
		}
	}
	return false
}

// Manager is narrower than Moderator: administrator or guild-management
// capability only, with no custom role escape hatch.
func Manager(member Snapshot) bool {
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return member.Permissions&discordgo.PermissionManageServer != 0
}

// CanModerate reports whether actor may act on target. The guild owner may
// act on anyone; nobody else may act on the owner; otherwise the actor's
// highest role must strictly outrank the target's. Equal rank always loses.
func CanModerate(actor, target Snapshot) bool {
	if actor.Owner {
		return true
	}
	if target.Owner {
		return false
	}
	return actor.TopRole > target.TopRole
}
