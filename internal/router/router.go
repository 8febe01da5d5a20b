// Package router turns inbound platform events into command invocations. It
// owns admission, deduplication, prefix and name resolution, and failure
// containment; command semantics live in the registered handlers.
package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"aura/internal/schedule"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// dedupWindow is how long a message id stays hot. A redelivery inside the
// window is dropped before any side effect runs.
const dedupWindow = 5000 * time.Millisecond

// Reply is the normalized outbound payload. The adapters translate it into
// a message reply or an interaction response depending on event source.
type Reply struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Files      []*discordgo.File
	Ephemeral  bool
}

// Options is the structured option accessor available on interaction events
// only. Every getter answers the zero value for a missing option.
type Options interface {
	String(name string) string
	Int(name string) int64
	Bool(name string) bool
	User(name string) *discordgo.User
	Channel(name string) *discordgo.Channel
	Role(name string) *discordgo.Role
}

// Context is the normalized view of one inbound command event.
type Context struct {
	Session   *discordgo.Session
	Guild     *discordgo.Guild
	Member    *discordgo.Member
	User      *discordgo.User
	ChannelID string
	// Options is nil for prefix commands; handlers fall back to parsing
	// the argument tokens.
	Options Options

	// Send delivers a Reply through the event source's reply mechanism.
	Send func(Reply) error
}

func (c *Context) Reply(r Reply) error {
	if c.Send == nil {
		return nil
	}
	return c.Send(r)
}

// Handler is the contract every command implements. Returning nil means the
// handler replied on its own; a *Reject is shown to the user as a visible
// rejection; any other error is contained, logged, and answered generically.
type Handler func(c *Context, args []string) error

// Reject is a user-visible, non-fatal rejection (authorization failures,
// missing targets, bad arguments). No state was mutated.
type Reject struct {
	Message string
}

func (r *Reject) Error() string { return r.Message }

func Rejectf(format string, args ...any) error {
	return &Reject{Message: fmt.Sprintf(format, args...)}
}

// PrefixSource supplies a guild's configured command prefixes. An empty
// answer falls back to the router's defaults.
type PrefixSource interface {
	Prefixes(guildID string) []string
}

type Router struct {
	logger          *zap.Logger
	prefixes        PrefixSource
	defaultPrefixes []string
	handlers        map[string]Handler
	dedup           *dedup
	sideChannel     func(c *Context, content string, mentions []*discordgo.User)
	decorateReject  func(message string) Reply
}

func New(logger *zap.Logger, prefixes PrefixSource, defaultPrefixes []string) *Router {
	return &Router{
		logger:          logger,
		prefixes:        prefixes,
		defaultPrefixes: defaultPrefixes,
		handlers:        make(map[string]Handler),
		dedup:           newDedup(schedule.RealClock(), dedupWindow),
		decorateReject: func(message string) Reply {
			return Reply{Content: message, Ephemeral: true}
		},
	}
}

func (r *Router) WithClock(clock schedule.Clock) {
	r.dedup.clock = clock
}

// SetSideChannel installs the hook run for every admitted, deduplicated
// guild text event, whether or not it resolves to a command.
func (r *Router) SetSideChannel(f func(c *Context, content string, mentions []*discordgo.User)) {
	r.sideChannel = f
}

// SetRejectDecorator controls how a Reject is rendered before sending.
func (r *Router) SetRejectDecorator(f func(message string) Reply) {
	r.decorateReject = f
}

func (r *Router) Register(name string, h Handler) {
	r.handlers[name] = h
}

// DispatchMessage runs the text-event state machine: admission, dedup,
// side channels, prefix resolution, lookup, invocation.
func (r *Router) DispatchMessage(c *Context, messageID, content string, authorIsBot bool, mentions []*discordgo.User) {
	if authorIsBot || c.Guild == nil {
		return
	}
	if r.dedup.seen(messageID) {
		return
	}

	if r.sideChannel != nil {
		r.sideChannel(c, content, mentions)
	}

	prefix := r.matchPrefix(c.Guild.ID, content)
	if prefix == "" {
		return
	}

	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])

	handler := r.lookup(name)
	if handler == nil {
		// Unknown prefix commands are dropped without a reply.
		return
	}
	r.invoke(c, name, handler, fields[1:])
}

// DispatchInteraction runs the interaction-event path. Arguments come from
// the structured options accessor, so the token list is always empty.
func (r *Router) DispatchInteraction(c *Context, name string) {
	if c.Guild == nil {
		_ = c.Reply(Reply{Content: "This command can only be used in a server.", Ephemeral: true})
		return
	}
	handler := r.lookup(name)
	if handler == nil {
		_ = c.Reply(Reply{Content: "Unknown command.", Ephemeral: true})
		return
	}
	r.invoke(c, name, handler, nil)
}

func (r *Router) matchPrefix(guildID, content string) string {
	prefixes := r.defaultPrefixes
	if r.prefixes != nil {
		if configured := r.prefixes.Prefixes(guildID); len(configured) > 0 {
			prefixes = configured
		}
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(content, prefix) {
			return prefix
		}
	}
	return ""
}

// lookup tries the exact name, then retries with a literal leading "check"
// stripped. The usual check* aliases are also registered directly; the
// fallback covers unregistered variants.
func (r *Router) lookup(name string) Handler {
	if h, ok := r.handlers[name]; ok {
		return h
	}
	if stripped := strings.TrimPrefix(name, "check"); stripped != name {
		if h, ok := r.handlers[stripped]; ok {
			return h
		}
	}
	return nil
}

// invoke runs one handler. Rejections become visible replies, other errors
// and panics are contained here with a generic failure reply; nothing a
// handler does may take down the dispatch loop.
func (r *Router) invoke(c *Context, name string, handler Handler, args []string) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("command panicked", zap.String("command", name), zap.Any("panic", v))
			if sendErr := c.Reply(Reply{Content: "There was an error executing that command.", Ephemeral: true}); sendErr != nil {
				r.logger.Warn("failure reply failed", zap.String("command", name), zap.Error(sendErr))
			}
		}
	}()

	err := handler(c, args)
	if err == nil {
		return
	}

	var reject *Reject
	if errors.As(err, &reject) {
		if sendErr := c.Reply(r.decorateReject(reject.Message)); sendErr != nil {
			r.logger.Warn("rejection reply failed", zap.String("command", name), zap.Error(sendErr))
		}
		return
	}

	r.logger.Error("command failed", zap.String("command", name), zap.Error(err))
	if sendErr := c.Reply(Reply{Content: "There was an error executing that command.", Ephemeral: true}); sendErr != nil {
		r.logger.Warn("failure reply failed", zap.String("command", name), zap.Error(sendErr))
	}
}

// dedup is the live set of recently seen message ids. Entries are removed by
// a fire-and-forget timer; a stale entry found early is overwritten.
type dedup struct {
	mu     sync.Mutex
	clock  schedule.Clock
	window time.Duration
	live   map[string]time.Time
}

func newDedup(clock schedule.Clock, window time.Duration) *dedup {
	return &dedup{clock: clock, window: window, live: make(map[string]time.Time)}
}

// seen marks the id and reports whether it was already live.
func (d *dedup) seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if at, ok := d.live[id]; ok && now.Sub(at) < d.window {
		return true
	}
	d.live[id] = now
	d.clock.AfterFunc(d.window, func() { d.expire(id) })
	return false
}

func (d *dedup) expire(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if at, ok := d.live[id]; ok && d.clock.Now().Sub(at) >= d.window {
		delete(d.live, id)
	}
}
