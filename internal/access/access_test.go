package access

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestModerator(t *testing.T) {
	cases := []struct {
		name   string
		member Snapshot
		roles  []string
		want   bool
	}{
		{"admin", Snapshot{Permissions: discordgo.PermissionAdministrator}, nil, true},
		{"manage server", Snapshot{Permissions: discordgo.PermissionManageServer}, nil, true},
		{"ban members", Snapshot{Permissions: discordgo.PermissionBanMembers}, nil, true},
		{"kick members", Snapshot{Permissions: discordgo.PermissionKickMembers}, nil, true},
		{"mod role", Snapshot{RoleIDs: []string{"r1", "r2"}}, []string{"r2"}, true},
		{"unrelated role", Snapshot{RoleIDs: []string{"r1"}}, []string{"r9"}, false},
		{"plain member", Snapshot{Permissions: discordgo.PermissionSendMessages}, nil, false},
	}
	for _, tc := range cases {
		if got := Moderator(tc.member, tc.roles); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestManager(t *testing.T) {
	if !Manager(Snapshot{Permissions: discordgo.PermissionAdministrator}) {
		t.Fatalf("administrator should manage")
	}
	if !Manager(Snapshot{Permissions: discordgo.PermissionManageServer}) {
		t.Fatalf("manage-server should manage")
	}
	// Ban and kick capabilities are not enough.
	if Manager(Snapshot{Permissions: discordgo.PermissionBanMembers | discordgo.PermissionKickMembers}) {
		t.Fatalf("ban/kick must not grant management")
	}
}

func TestCanModerate(t *testing.T) {
	owner := Snapshot{UserID: "owner", Owner: true}
	high := Snapshot{UserID: "high", TopRole: 10}
	low := Snapshot{UserID: "low", TopRole: 5}
	peer := Snapshot{UserID: "peer", TopRole: 5}

	if !CanModerate(owner, high) {
		t.Fatalf("owner should moderate anyone")
	}
	if CanModerate(high, owner) {
		t.Fatalf("nobody moderates the owner")
	}
	if !CanModerate(high, low) {
		t.Fatalf("higher role should moderate lower")
	}
	if CanModerate(low, high) {
		t.Fatalf("lower role must not moderate higher")
	}
	if CanModerate(low, peer) {
		t.Fatalf("equal rank must lose")
	}
}

func TestOwnerBeatsOwnerCheckOrder(t *testing.T) {
	// An owner acting on themselves is allowed: the actor check wins.
	owner := Snapshot{UserID: "owner", Owner: true}
	if !CanModerate(owner, owner) {
		t.Fatalf("owner-on-owner should resolve in the actor's favor")
	}
}
