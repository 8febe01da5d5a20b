// Package modlog keeps the per-guild moderation case log. Cases are numbered
// from 1 within each guild, are never deleted or renumbered, and only the
// reason may change after creation. The log is advisory: every lookup on an
// unknown guild, user, or case answers "not found" rather than failing, so a
// moderation action always proceeds even when its bookkeeping cannot.
package modlog

import (
	"sync"
	"time"
)

type Action string

const (
	ActionBan     Action = "Ban"
	ActionUnban   Action = "Unban"
	ActionKick    Action = "Kick"
	ActionMute    Action = "Mute"
	ActionUnmute  Action = "Unmute"
	ActionWarn    Action = "Warn"
	ActionSoftban Action = "Softban"
)

const defaultReason = "No reason provided"

// User is the identity snapshot recorded on a case. Tags are captured at
// action time and never re-resolved.
type User struct {
	ID  string
	Tag string
}

type Case struct {
	ID           int
	Action       Action
	UserID       string
	UserTag      string
	ModeratorID  string
	ModeratorTag string
	Reason       string
	CreatedAt    time.Time
	// Duration is set only for time-bounded actions and is immutable.
	Duration string
}

type Log struct {
	mu       sync.Mutex
	clock    func() time.Time
	counters map[string]int
	cases    map[string]map[string][]*Case
}

func New() *Log {
	return &Log{
		clock:    time.Now,
		counters: make(map[string]int),
		cases:    make(map[string]map[string][]*Case),
	}
}

func (l *Log) WithClock(clock func() time.Time) {
	l.clock = clock
}

// Create appends a new case to the target user's list and returns its
// guild-unique case number. Numbers are strictly increasing and gap-free.
func (l *Log) Create(guildID string, action Action, user, moderator User, reason, duration string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if reason == "" {
		reason = defaultReason
	}

	l.counters[guildID]++
	entry := &Case{
		ID:           l.counters[guildID],
		Action:       action,
		UserID:       user.ID,
		UserTag:      user.Tag,
		ModeratorID:  moderator.ID,
		ModeratorTag: moderator.Tag,
		Reason:       reason,
		CreatedAt:    l.clock(),
		Duration:     duration,
	}

	guild := l.cases[guildID]
	if guild == nil {
		guild = make(map[string][]*Case)
		l.cases[guildID] = guild
	}
	guild[user.ID] = append(guild[user.ID], entry)

	return entry.ID
}

// List returns the user's cases oldest first; empty when there are none.
func (l *Log) List(guildID, userID string) []Case {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.cases[guildID][userID]
	out := make([]Case, len(entries))
	for i, entry := range entries {
		out[i] = *entry
	}
	return out
}

// Find scans every user's case list in the guild for the given case number.
func (l *Log) Find(guildID string, caseID int) (Case, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry := l.find(guildID, caseID); entry != nil {
		return *entry, true
	}
	return Case{}, false
}

// AmendReason replaces the case's reason in place. The prior reason is lost;
// no amendment trail is kept.
func (l *Log) AmendReason(guildID string, caseID int, reason string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.find(guildID, caseID)
	if entry == nil {
		return false
	}
	entry.Reason = reason
	return true
}

func (l *Log) find(guildID string, caseID int) *Case {
	for _, entries := range l.cases[guildID] {
		for _, entry := range entries {
			if entry.ID == caseID {
				return entry
			}
		}
	}
	return nil
}
