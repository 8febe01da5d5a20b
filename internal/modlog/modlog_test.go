package modlog

import (
	"testing"
	"time"
)

func TestCaseNumbering(t *testing.T) {
	log := New()
	log.WithClock(func() time.Time { return time.Unix(0, 0) })

	mod := User{ID: "m1", Tag: "mod#0001"}

	first := log.Create("g1", ActionWarn, User{ID: "u1", Tag: "a#1"}, mod, "spam", "")
	if first != 1 {
		t.Fatalf("first case in a guild should be 1, got %d", first)
	}
	second := log.Create("g1", ActionBan, User{ID: "u2", Tag: "b#2"}, mod, "raid", "1d")
	if second != 2 {
		t.Fatalf("expected 2, got %d", second)
	}

	// Each guild numbers independently.
	other := log.Create("g2", ActionKick, User{ID: "u1", Tag: "a#1"}, mod, "", "")
	if other != 1 {
		t.Fatalf("expected a fresh counter for g2, got %d", other)
	}
}

func TestCreateDefaultsReason(t *testing.T) {
	log := New()
	id := log.Create("g1", ActionKick, User{ID: "u1", Tag: "a#1"}, User{ID: "m1", Tag: "m#1"}, "", "")

	entry, ok := log.Find("g1", id)
	if !ok {
		t.Fatalf("case %d not found", id)
	}
	if entry.Reason != "No reason provided" {
		t.Fatalf("unexpected default reason: %q", entry.Reason)
	}
}

func TestListOrderAndIsolation(t *testing.T) {
	log := New()
	mod := User{ID: "m1", Tag: "m#1"}
	log.Create("g1", ActionWarn, User{ID: "u1", Tag: "a#1"}, mod, "first", "")
	log.Create("g1", ActionMute, User{ID: "u1", Tag: "a#1"}, mod, "second", "1h")
	log.Create("g1", ActionWarn, User{ID: "u2", Tag: "b#2"}, mod, "other user", "")

	cases := log.List("g1", "u1")
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases for u1, got %d", len(cases))
	}
	if cases[0].Reason != "first" || cases[1].Reason != "second" {
		t.Fatalf("cases out of creation order: %+v", cases)
	}

	// Mutating the returned slice must not touch the log.
	cases[0].Reason = "clobbered"
	if fresh := log.List("g1", "u1"); fresh[0].Reason != "first" {
		t.Fatalf("List leaked internal state")
	}

	if got := log.List("g1", "nobody"); len(got) != 0 {
		t.Fatalf("expected no cases for unknown user, got %d", len(got))
	}
}

func TestFindAcrossUsers(t *testing.T) {
	log := New()
	mod := User{ID: "m1", Tag: "m#1"}
	log.Create("g1", ActionWarn, User{ID: "u1", Tag: "a#1"}, mod, "spam", "")
	id := log.Create("g1", ActionBan, User{ID: "u2", Tag: "b#2"}, mod, "raid", "")

	entry, ok := log.Find("g1", id)
	if !ok || entry.UserID != "u2" || entry.Action != ActionBan {
		t.Fatalf("unexpected case: %+v ok=%v", entry, ok)
	}

	if _, ok := log.Find("g1", 99); ok {
		t.Fatalf("found a case that does not exist")
	}
	if _, ok := log.Find("g2", id); ok {
		t.Fatalf("case leaked across guilds")
	}
}

func TestAmendReason(t *testing.T) {
	log := New()
	mod := User{ID: "m1", Tag: "m#1"}
	id := log.Create("g1", ActionWarn, User{ID: "u1", Tag: "a#1"}, mod, "spam", "")

	if !log.AmendReason("g1", id, "repeated spam") {
		t.Fatalf("amend failed for an existing case")
	}
	entry, _ := log.Find("g1", id)
	if entry.Reason != "repeated spam" {
		t.Fatalf("reason not updated: %q", entry.Reason)
	}

	if log.AmendReason("g1", 42, "nope") {
		t.Fatalf("amend succeeded for a missing case")
	}
}
