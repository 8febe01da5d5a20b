package state

import (
	"testing"
	"time"
)

func TestWarnings(t *testing.T) {
	s := NewStore()

	if got := s.Warnings("g1", "u1"); len(got) != 0 {
		t.Fatalf("fresh store should have no warnings, got %d", len(got))
	}

	n := s.AddWarning("g1", "u1", Warning{ID: "w1", Reason: "spam"})
	if n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}
	n = s.AddWarning("g1", "u1", Warning{ID: "w2", Reason: "more spam"})
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
	s.AddWarning("g1", "u2", Warning{ID: "w3"})
	s.AddWarning("g2", "u1", Warning{ID: "w4"})

	warnings := s.Warnings("g1", "u1")
	if len(warnings) != 2 || warnings[0].ID != "w1" || warnings[1].ID != "w2" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}

	// Copies only.
	warnings[0].Reason = "clobbered"
	if s.Warnings("g1", "u1")[0].Reason != "spam" {
		t.Fatalf("Warnings leaked internal state")
	}

	if !s.DeleteWarning("g1", "u1", 0) {
		t.Fatalf("delete by index failed")
	}
	if got := s.Warnings("g1", "u1"); len(got) != 1 || got[0].ID != "w2" {
		t.Fatalf("wrong warning deleted: %+v", got)
	}
	if s.DeleteWarning("g1", "u1", 5) {
		t.Fatalf("out-of-range delete succeeded")
	}

	s.ClearWarnings("g1", "u1")
	if len(s.Warnings("g1", "u1")) != 0 {
		t.Fatalf("clear left warnings behind")
	}
	if len(s.Warnings("g2", "u1")) != 1 {
		t.Fatalf("clear leaked across guilds")
	}
}

func TestCancelWarningSearchesAllUsers(t *testing.T) {
	s := NewStore()
	s.AddWarning("g1", "u1", Warning{ID: "w1"})
	s.AddWarning("g1", "u2", Warning{ID: "w2"})

	if !s.CancelWarning("g1", "w2") {
		t.Fatalf("cancel by id failed")
	}
	if len(s.Warnings("g1", "u2")) != 0 {
		t.Fatalf("warning not removed")
	}
	if len(s.Warnings("g1", "u1")) != 1 {
		t.Fatalf("wrong user's warning removed")
	}
	if s.CancelWarning("g1", "w2") {
		t.Fatalf("second cancel should be a no-op")
	}
}

func TestAFK(t *testing.T) {
	s := NewStore()

	if _, ok := s.AFKStatus("g1", "u1"); ok {
		t.Fatalf("unset AFK reported as set")
	}

	s.SetAFK("g1", "u1", AFK{Status: "lunch", Since: time.Unix(100, 0)})
	afk, ok := s.AFKStatus("g1", "u1")
	if !ok || afk.Status != "lunch" {
		t.Fatalf("unexpected AFK: %+v ok=%v", afk, ok)
	}

	if !s.IgnoreAFKChannel("g1", "u1", "c9") {
		t.Fatalf("ignore channel failed while AFK")
	}
	afk, _ = s.AFKStatus("g1", "u1")
	if !afk.Ignores("c9") || afk.Ignores("c1") {
		t.Fatalf("unexpected ignore set: %+v", afk.IgnoredChannels)
	}

	if s.IgnoreAFKChannel("g1", "u2", "c9") {
		t.Fatalf("ignore channel succeeded for a non-AFK user")
	}

	if !s.ClearAFK("g1", "u1") {
		t.Fatalf("clear failed")
	}
	if s.ClearAFK("g1", "u1") {
		t.Fatalf("second clear should report nothing to do")
	}
}

func TestPollVotes(t *testing.T) {
	s := NewStore()
	s.SetPoll("m1", Poll{Question: "q", Options: []string{"a", "b"}, Votes: map[int]int{}})

	if !s.AddPollVote("m1", 0) || !s.AddPollVote("m1", 0) || !s.AddPollVote("m1", 1) {
		t.Fatalf("vote on live poll failed")
	}
	if s.AddPollVote("m2", 0) {
		t.Fatalf("vote on unknown poll succeeded")
	}

	poll, ok := s.Poll("m1")
	if !ok || poll.Votes[0] != 2 || poll.Votes[1] != 1 || poll.TotalVotes != 3 {
		t.Fatalf("unexpected tally: %+v", poll)
	}

	if !s.RemovePollVote("m1", 0) {
		t.Fatalf("retract failed")
	}
	poll, _ = s.Poll("m1")
	if poll.Votes[0] != 1 || poll.TotalVotes != 2 {
		t.Fatalf("unexpected tally after retract: %+v", poll)
	}
}

func TestHighlights(t *testing.T) {
	s := NewStore()

	s.AddHighlight("g1", "u1", "Release Notes")
	s.AddHighlight("g1", "u1", "deploy")
	s.AddHighlight("g1", "u2", "deploy")

	// Phrases are stored lowercased for case-insensitive matching.
	phrases := s.Highlights("g1", "u1")
	if len(phrases) != 2 || phrases[0] != "release notes" {
		t.Fatalf("unexpected phrases: %v", phrases)
	}

	all := s.AllHighlights("g1")
	if len(all) != 2 || len(all["u2"]) != 1 {
		t.Fatalf("unexpected guild view: %v", all)
	}

	if !s.RemoveHighlight("g1", "u1", "DEPLOY") {
		t.Fatalf("case-insensitive remove failed")
	}
	if s.RemoveHighlight("g1", "u1", "deploy") {
		t.Fatalf("second remove should fail")
	}

	s.ClearHighlights("g1", "u1")
	if len(s.Highlights("g1", "u1")) != 0 {
		t.Fatalf("clear left phrases behind")
	}
}

func TestIgnoreToggles(t *testing.T) {
	s := NewStore()

	if !s.ToggleIgnoredChannel("g1", "c1") {
		t.Fatalf("first toggle should ignore")
	}
	if !s.IsChannelIgnored("g1", "c1") {
		t.Fatalf("channel not ignored")
	}
	if s.ToggleIgnoredChannel("g1", "c1") {
		t.Fatalf("second toggle should un-ignore")
	}
	if s.IsChannelIgnored("g1", "c1") {
		t.Fatalf("channel still ignored")
	}

	s.ToggleIgnoredUser("g1", "u1")
	if !s.IsUserIgnored("g1", "u1") || s.IsUserIgnored("g2", "u1") {
		t.Fatalf("user ignore scoped wrong")
	}

	s.ToggleIgnoredRole("g1", "r2")
	if !s.IsRoleIgnored("g1", []string{"r1", "r2"}) {
		t.Fatalf("role ignore missed")
	}
	if s.IsRoleIgnored("g1", []string{"r1"}) {
		t.Fatalf("role ignore false positive")
	}
}

func TestRolePersist(t *testing.T) {
	s := NewStore()

	if s.RolePersistEnabled("g1") {
		t.Fatalf("persist should default off")
	}
	s.SetRolePersist("g1", true)
	if !s.RolePersistEnabled("g1") {
		t.Fatalf("persist not enabled")
	}

	s.SnapshotRoles("g1", "u1", []string{"r1", "r2"})
	roles := s.PersistedRoles("g1", "u1")
	if len(roles) != 2 || roles[0] != "r1" {
		t.Fatalf("unexpected persisted roles: %v", roles)
	}
	if len(s.PersistedRoles("g1", "u2")) != 0 {
		t.Fatalf("persisted roles leaked across users")
	}
}

func TestRanks(t *testing.T) {
	s := NewStore()

	s.AddRank("g1", "r1", "Gamer")
	s.AddRank("g1", "r2", "Artist")
	if !s.IsRank("g1", "r1") || s.IsRank("g2", "r1") {
		t.Fatalf("rank scoping wrong")
	}

	ranks := s.Ranks("g1")
	if len(ranks) != 2 || ranks["r2"] != "Artist" {
		t.Fatalf("unexpected ranks: %v", ranks)
	}

	s.RemoveRank("g1", "r1")
	if s.IsRank("g1", "r1") {
		t.Fatalf("rank not removed")
	}
}

func TestNotes(t *testing.T) {
	s := NewStore()

	s.AddNote("g1", "u1", Note{ID: "n1", Text: "first"})
	s.AddNote("g1", "u1", Note{ID: "n2", Text: "second"})

	notes := s.Notes("g1", "u1")
	if len(notes) != 2 || notes[0].Text != "first" {
		t.Fatalf("unexpected notes: %+v", notes)
	}

	if !s.DeleteNote("g1", "u1", 1) {
		t.Fatalf("delete failed")
	}
	if got := s.Notes("g1", "u1"); len(got) != 1 || got[0].ID != "n1" {
		t.Fatalf("wrong note deleted: %+v", got)
	}

	s.ClearNotes("g1", "u1")
	if len(s.Notes("g1", "u1")) != 0 {
		t.Fatalf("clear left notes behind")
	}
}

func TestGiveaways(t *testing.T) {
	s := NewStore()
	s.SetGiveaway("m1", Giveaway{Prize: "game", Winners: 2, ChannelID: "c1"})

	g, ok := s.Giveaway("m1")
	if !ok || g.Prize != "game" {
		t.Fatalf("unexpected giveaway: %+v ok=%v", g, ok)
	}

	if !s.DeleteGiveaway("m1") {
		t.Fatalf("delete failed")
	}
	if s.DeleteGiveaway("m1") {
		t.Fatalf("second delete should be a no-op")
	}
	if _, ok := s.Giveaway("m1"); ok {
		t.Fatalf("deleted giveaway still present")
	}
}
