package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30s", 30 * time.Second, true},
		{"15m", 15 * time.Minute, true},
		{"2h", 2 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"1w", 7 * 24 * time.Hour, true},
		{"500ms", 500 * time.Millisecond, true},
		{"1.5h", 90 * time.Minute, true},
		{"45", 45 * time.Minute, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5m", 0, false},
		{"0h", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseTime(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseTime(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{90 * time.Minute, "1h 30m"},
		{24 * time.Hour, "1d"},
		{25*time.Hour + 5*time.Second, "1d 1h 5s"},
		{45 * time.Second, "45s"},
		{300 * time.Millisecond, "0s"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2*time.Hour + 20*time.Minute, "2h 20m ago"},
	}
	for _, tc := range cases {
		if got := formatElapsed(tc.in); got != tc.want {
			t.Fatalf("formatElapsed(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripMention(t *testing.T) {
	cases := map[string]string{
		"<@123>":  "123",
		"<@!123>": "123",
		"<#456>":  "456",
		"<@&789>": "789",
		"123":     "123",
	}
	for in, want := range cases {
		if got := stripMention(in); got != want {
			t.Fatalf("stripMention(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	if got, ok := parseHexColor("#FF8800"); !ok || got != 0xFF8800 {
		t.Fatalf("parseHexColor(#FF8800) = %x, %v", got, ok)
	}
	if got, ok := parseHexColor("00ff00"); !ok || got != 0x00FF00 {
		t.Fatalf("parseHexColor(00ff00) = %x, %v", got, ok)
	}
	for _, bad := range []string{"", "#fff", "zzzzzz", "#1234567"} {
		if _, ok := parseHexColor(bad); ok {
			t.Fatalf("parseHexColor(%q) should fail", bad)
		}
	}
}

func TestMemberSnapshot(t *testing.T) {
	guild := &discordgo.Guild{
		ID:      "1",
		OwnerID: "900",
		Roles: []*discordgo.Role{
			{ID: "1", Position: 0, Permissions: discordgo.PermissionSendMessages},
			{ID: "10", Position: 3, Permissions: discordgo.PermissionKickMembers},
			{ID: "20", Position: 7, Permissions: discordgo.PermissionBanMembers},
		},
	}
	member := &discordgo.Member{
		User:  &discordgo.User{ID: "100"},
		Roles: []string{"10", "20"},
	}

	snap := memberSnapshot(guild, member)
	if snap.UserID != "100" || snap.Owner {
		t.Fatalf("unexpected identity: %+v", snap)
	}
	if snap.TopRole != 7 {
		t.Fatalf("expected top role position 7, got %d", snap.TopRole)
	}
	want := int64(discordgo.PermissionSendMessages | discordgo.PermissionKickMembers | discordgo.PermissionBanMembers)
	if snap.Permissions != want {
		t.Fatalf("permissions = %x, want %x", snap.Permissions, want)
	}

	owner := memberSnapshot(guild, &discordgo.Member{User: &discordgo.User{ID: "900"}})
	if !owner.Owner {
		t.Fatalf("owner not detected")
	}

	if got := memberSnapshot(nil, member); got.UserID != "" {
		t.Fatalf("nil guild should produce an empty snapshot")
	}
}

func TestParseCoordinate(t *testing.T) {
	lat, lon, ok := parseCoordinate("48.85, 2.35")
	if !ok || lat != 48.85 || lon != 2.35 {
		t.Fatalf("parseCoordinate = %v, %v, %v", lat, lon, ok)
	}
	for _, bad := range []string{"", "48.85", "91,0", "0,181", "a,b"} {
		if _, _, ok := parseCoordinate(bad); ok {
			t.Fatalf("parseCoordinate(%q) should fail", bad)
		}
	}
}
