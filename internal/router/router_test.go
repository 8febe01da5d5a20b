package router

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"aura/internal/schedule"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) schedule.Timer {
	return fakeTimer{}
}

type fakeTimer struct{}

func (fakeTimer) Stop() bool { return false }

type staticPrefixes struct{ prefixes []string }

func (s staticPrefixes) Prefixes(guildID string) []string { return s.prefixes }

func testContext(replies *[]Reply) *Context {
	return &Context{
		Guild: &discordgo.Guild{ID: "g1"},
		User:  &discordgo.User{ID: "u1"},
		Send: func(r Reply) error {
			*replies = append(*replies, r)
			return nil
		},
	}
}

func TestDispatchTokenization(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!", "?"})

	var gotName string
	var gotArgs []string
	r.Register("warn", func(c *Context, args []string) error {
		gotName = "warn"
		gotArgs = args
		return nil
	})

	var replies []Reply
	r.DispatchMessage(testContext(&replies), "m1", "?warn  <@42>   spam", false, nil)

	if gotName != "warn" {
		t.Fatalf("expected warn to run, got %q", gotName)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "<@42>" || gotArgs[1] != "spam" {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	if len(replies) != 0 {
		t.Fatalf("expected no replies, got %d", len(replies))
	}
}

func TestDispatchAdmission(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})

	calls := 0
	r.Register("ping", func(c *Context, args []string) error {
		calls++
		return nil
	})

	var replies []Reply

	// Bot authors are dropped.
	r.DispatchMessage(testContext(&replies), "m1", "!ping", true, nil)
	if calls != 0 {
		t.Fatalf("bot message dispatched")
	}

	// Events without a guild are dropped.
	c := testContext(&replies)
	c.Guild = nil
	r.DispatchMessage(c, "m2", "!ping", false, nil)
	if calls != 0 {
		t.Fatalf("guildless message dispatched")
	}

	// Unknown commands are dropped silently.
	r.DispatchMessage(testContext(&replies), "m3", "!nosuch", false, nil)
	if len(replies) != 0 {
		t.Fatalf("unknown prefix command replied: %v", replies)
	}

	// Unprefixed content is not a command.
	r.DispatchMessage(testContext(&replies), "m4", "ping", false, nil)
	if calls != 0 {
		t.Fatalf("unprefixed message dispatched")
	}
}

func TestDedupWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	r := New(zap.NewNop(), nil, []string{"!"})
	r.WithClock(clock)

	calls := 0
	r.Register("ping", func(c *Context, args []string) error {
		calls++
		return nil
	})

	var replies []Reply
	r.DispatchMessage(testContext(&replies), "m1", "!ping", false, nil)
	r.DispatchMessage(testContext(&replies), "m1", "!ping", false, nil)
	if calls != 1 {
		t.Fatalf("redelivery inside the window ran the handler %d times", calls)
	}

	// A different id inside the window is fine.
	r.DispatchMessage(testContext(&replies), "m2", "!ping", false, nil)
	if calls != 2 {
		t.Fatalf("distinct id dropped, calls=%d", calls)
	}

	// The same id after the window is fresh again.
	clock.now = clock.now.Add(dedupWindow + time.Millisecond)
	r.DispatchMessage(testContext(&replies), "m1", "!ping", false, nil)
	if calls != 3 {
		t.Fatalf("expired id still deduplicated, calls=%d", calls)
	}
}

func TestGuildPrefixOverridesDefaults(t *testing.T) {
	r := New(zap.NewNop(), staticPrefixes{prefixes: []string{">>"}}, []string{"!"})

	calls := 0
	r.Register("ping", func(c *Context, args []string) error {
		calls++
		return nil
	})

	var replies []Reply
	r.DispatchMessage(testContext(&replies), "m1", "!ping", false, nil)
	if calls != 0 {
		t.Fatalf("default prefix matched despite a configured one")
	}
	r.DispatchMessage(testContext(&replies), "m2", ">>ping", false, nil)
	if calls != 1 {
		t.Fatalf("configured prefix did not match")
	}
}

func TestCheckAliasFallback(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})

	calls := 0
	r.Register("warnings", func(c *Context, args []string) error {
		calls++
		return nil
	})

	var replies []Reply
	r.DispatchMessage(testContext(&replies), "m1", "!checkwarnings <@42>", false, nil)
	if calls != 1 {
		t.Fatalf("check-prefixed alias did not resolve")
	}
}

func TestRejectAndFailureReplies(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})
	r.Register("denied", func(c *Context, args []string) error {
		return Rejectf("not allowed")
	})
	r.Register("broken", func(c *Context, args []string) error {
		return fmt.Errorf("wrapped: %w", errors.New("boom"))
	})

	var replies []Reply
	r.DispatchMessage(testContext(&replies), "m1", "!denied", false, nil)
	if len(replies) != 1 || replies[0].Content != "not allowed" || !replies[0].Ephemeral {
		t.Fatalf("unexpected rejection reply: %+v", replies)
	}

	replies = nil
	r.DispatchMessage(testContext(&replies), "m2", "!broken", false, nil)
	if len(replies) != 1 || replies[0].Content != "There was an error executing that command." {
		t.Fatalf("unexpected failure reply: %+v", replies)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})
	r.Register("crash", func(c *Context, args []string) error {
		var m map[string]int
		m["boom"] = 1
		return nil
	})

	var replies []Reply
	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("panic escaped the dispatch loop: %v", v)
		}
	}()
	r.DispatchMessage(testContext(&replies), "m1", "!crash", false, nil)

	if len(replies) != 1 || replies[0].Content != "There was an error executing that command." {
		t.Fatalf("unexpected reply after panic: %+v", replies)
	}

	// The interaction path is contained the same way.
	replies = nil
	r.DispatchInteraction(testContext(&replies), "crash")
	if len(replies) != 1 || replies[0].Content != "There was an error executing that command." {
		t.Fatalf("unexpected interaction reply after panic: %+v", replies)
	}
}

func TestSideChannelRunsWithoutPrefix(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})

	seen := []string{}
	r.SetSideChannel(func(c *Context, content string, mentions []*discordgo.User) {
		seen = append(seen, content)
	})
	r.Register("ping", func(c *Context, args []string) error { return nil })

	var replies []Reply
	r.DispatchMessage(testContext(&replies), "m1", "hello there", false, nil)
	r.DispatchMessage(testContext(&replies), "m2", "!ping", false, nil)
	if len(seen) != 2 {
		t.Fatalf("side channel ran %d times, want 2", len(seen))
	}

	// Deduplicated redeliveries never reach the side channel.
	r.DispatchMessage(testContext(&replies), "m1", "hello there", false, nil)
	if len(seen) != 2 {
		t.Fatalf("side channel ran on a duplicate")
	}
}

func TestDispatchInteractionUnknown(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})

	var replies []Reply
	r.DispatchInteraction(testContext(&replies), "nosuch")
	if len(replies) != 1 || replies[0].Content != "Unknown command." || !replies[0].Ephemeral {
		t.Fatalf("unexpected unknown-command reply: %+v", replies)
	}
}

func TestDispatchInteractionWithoutGuild(t *testing.T) {
	r := New(zap.NewNop(), nil, []string{"!"})

	calls := 0
	r.Register("ping", func(c *Context, args []string) error {
		calls++
		return nil
	})

	var replies []Reply
	c := testContext(&replies)
	c.Guild = nil
	r.DispatchInteraction(c, "ping")

	if calls != 0 {
		t.Fatalf("guildless interaction dispatched")
	}
	if len(replies) != 1 || replies[0].Content != "This command can only be used in a server." || !replies[0].Ephemeral {
		t.Fatalf("unexpected guildless reply: %+v", replies)
	}
}
