// Package state holds all mutable per-guild bot state. Everything lives for
// the process lifetime only; nothing here is persisted. Absent guilds and
// users read as empty, never as an error.
package state

import (
	"strings"
	"sync"
	"time"
)

type Warning struct {
	ID           string
	UserID       string
	UserTag      string
	ModeratorID  string
	ModeratorTag string
	Reason       string
	CreatedAt    time.Time
}

type Note struct {
	ID           string
	ModeratorID  string
	ModeratorTag string
	Text         string
	CreatedAt    time.Time
}

type AFK struct {
	Status          string
	Since           time.Time
	IgnoredChannels []string
}

func (a AFK) Ignores(channelID string) bool {
	for _, id := range a.IgnoredChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

type Poll struct {
	Question   string
	Options    []string
	Votes      map[int]int
	TotalVotes int
}

type Giveaway struct {
	Prize     string
	Winners   int
	EndsAt    time.Time
	ChannelID string
	HostID    string
}

// Store is the guild-scoped store. It is shared by every command handler and
// mutated under one mutex: discordgo dispatches each gateway event on its own
// goroutine, so handlers genuinely run in parallel.
type Store struct {
	mu sync.Mutex

	warnings   map[string]map[string][]Warning
	notes      map[string]map[string][]Note
	afk        map[string]map[string]*AFK
	polls      map[string]*Poll
	giveaways  map[string]*Giveaway
	highlights map[string]map[string][]string

	ignoredChannels map[string]map[string]struct{}
	ignoredUsers    map[string]map[string]struct{}
	ignoredRoles    map[string]map[string]struct{}

	rolePersist  map[string]bool
	persistRoles map[string]map[string][]string

	ranks map[string]map[string]string
}

func NewStore() *Store {
	return &Store{
		warnings:        make(map[string]map[string][]Warning),
		notes:           make(map[string]map[string][]Note),
		afk:             make(map[string]map[string]*AFK),
		polls:           make(map[string]*Poll),
		giveaways:       make(map[string]*Giveaway),
		highlights:      make(map[string]map[string][]string),
		ignoredChannels: make(map[string]map[string]struct{}),
		ignoredUsers:    make(map[string]map[string]struct{}),
		ignoredRoles:    make(map[string]map[string]struct{}),
		rolePersist:     make(map[string]bool),
		persistRoles:    make(map[string]map[string][]string),
		ranks:           make(map[string]map[string]string),
	}
}

// Warnings

func (s *Store) AddWarning(guildID, userID string, warning Warning) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.warnings[guildID]
	if guild == nil {
		guild = make(map[string][]Warning)
		s.warnings[guildID] = guild
	}
	guild[userID] = append(guild[userID], warning)
	return len(guild[userID])
}

func (s *Store) Warnings(guildID, userID string) []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.warnings[guildID][userID]
	out := make([]Warning, len(list))
	copy(out, list)
	return out
}

func (s *Store) ClearWarnings(guildID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guild := s.warnings[guildID]; guild != nil {
		delete(guild, userID)
	}
}

// DeleteWarning removes the warning at index (0-based) from the user's list.
func (s *Store) DeleteWarning(guildID, userID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.warnings[guildID][userID]
	if index < 0 || index >= len(list) {
		return false
	}
	s.warnings[guildID][userID] = append(list[:index], list[index+1:]...)
	return true
}

// CancelWarning removes a warning by id, scanning every user in the guild.
// A no-op returning false if the warning was already removed.
func (s *Store) CancelWarning(guildID, warnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, list := range s.warnings[guildID] {
		for i, w := range list {
			if w.ID == warnID {
				s.warnings[guildID][userID] = append(list[:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Notes

func (s *Store) AddNote(guildID, userID string, note Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.notes[guildID]
	if guild == nil {
		guild = make(map[string][]Note)
		s.notes[guildID] = guild
	}
	guild[userID] = append(guild[userID], note)
}

func (s *Store) Notes(guildID, userID string) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notes[guildID][userID]
	out := make([]Note, len(list))
	copy(out, list)
	return out
}

func (s *Store) DeleteNote(guildID, userID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notes[guildID][userID]
	if index < 0 || index >= len(list) {
		return false
	}
	s.notes[guildID][userID] = append(list[:index], list[index+1:]...)
	return true
}

func (s *Store) ClearNotes(guildID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guild := s.notes[guildID]; guild != nil {
		delete(guild, userID)
	}
}

// AFK

func (s *Store) SetAFK(guildID, userID string, afk AFK) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.afk[guildID]
	if guild == nil {
		guild = make(map[string]*AFK)
		s.afk[guildID] = guild
	}
	guild[userID] = &afk
}

func (s *Store) AFKStatus(guildID, userID string) (AFK, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	afk := s.afk[guildID][userID]
	if afk == nil {
		return AFK{}, false
	}
	return *afk, true
}

func (s *Store) ClearAFK(guildID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.afk[guildID]
	if guild == nil {
		return false
	}
	if _, ok := guild[userID]; !ok {
		return false
	}
	delete(guild, userID)
	return true
}

func (s *Store) IgnoreAFKChannel(guildID, userID, channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	afk := s.afk[guildID][userID]
	if afk == nil {
		return false
	}
	for _, id := range afk.IgnoredChannels {
		if id == channelID {
			return true
		}
	}
	afk.IgnoredChannels = append(afk.IgnoredChannels, channelID)
	return true
}

// AFKList returns every AFK user in the guild keyed by user id.
func (s *Store) AFKList(guildID string) map[string]AFK {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]AFK, len(s.afk[guildID]))
	for userID, afk := range s.afk[guildID] {
		out[userID] = *afk
	}
	return out
}

// Polls (keyed by poll message id)

func (s *Store) SetPoll(messageID string, poll Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if poll.Votes == nil {
		poll.Votes = make(map[int]int)
	}
	s.polls[messageID] = &poll
}

func (s *Store) Poll(messageID string) (Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := s.polls[messageID]
	if poll == nil {
		return Poll{}, false
	}
	out := *poll
	out.Votes = make(map[int]int, len(poll.Votes))
	for k, v := range poll.Votes {
		out.Votes[k] = v
	}
	return out, true
}

func (s *Store) AddPollVote(messageID string, option int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := s.polls[messageID]
	if poll == nil || option < 0 || option >= len(poll.Options) {
		return false
	}
	poll.Votes[option]++
	poll.TotalVotes++
	return true
}

func (s *Store) RemovePollVote(messageID string, option int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := s.polls[messageID]
	if poll == nil || option < 0 || option >= len(poll.Options) || poll.Votes[option] <= 0 {
		return false
	}
	poll.Votes[option]--
	if poll.TotalVotes > 0 {
		poll.TotalVotes--
	}
	return true
}

// Giveaways (keyed by giveaway message id)

func (s *Store) SetGiveaway(messageID string, giveaway Giveaway) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.giveaways[messageID] = &giveaway
}

func (s *Store) Giveaway(messageID string) (Giveaway, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.giveaways[messageID]
	if g == nil {
		return Giveaway{}, false
	}
	return *g, true
}

func (s *Store) DeleteGiveaway(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.giveaways[messageID]; !ok {
		return false
	}
	delete(s.giveaways, messageID)
	return true
}

// Highlights

func (s *Store) AddHighlight(guildID, userID, phrase string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.highlights[guildID]
	if guild == nil {
		guild = make(map[string][]string)
		s.highlights[guildID] = guild
	}
	guild[userID] = append(guild[userID], strings.ToLower(phrase))
}

func (s *Store) RemoveHighlight(guildID, userID, phrase string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	phrase = strings.ToLower(phrase)
	list := s.highlights[guildID][userID]
	for i, p := range list {
		if p == phrase {
			s.highlights[guildID][userID] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Highlights(guildID, userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.highlights[guildID][userID]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func (s *Store) ClearHighlights(guildID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guild := s.highlights[guildID]; guild != nil {
		delete(guild, userID)
	}
}

// AllHighlights returns every member's registered phrases for a guild.
func (s *Store) AllHighlights(guildID string) map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string, len(s.highlights[guildID]))
	for userID, list := range s.highlights[guildID] {
		phrases := make([]string, len(list))
		copy(phrases, list)
		out[userID] = phrases
	}
	return out
}

// Ignore lists

func toggle(set map[string]map[string]struct{}, guildID, id string) bool {
	guild := set[guildID]
	if guild == nil {
		guild = make(map[string]struct{})
		set[guildID] = guild
	}
	if _, ok := guild[id]; ok {
		delete(guild, id)
		return false
	}
	guild[id] = struct{}{}
	return true
}

func (s *Store) ToggleIgnoredChannel(guildID, channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.ignoredChannels, guildID, channelID)
}

func (s *Store) ToggleIgnoredUser(guildID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.ignoredUsers, guildID, userID)
}

func (s *Store) ToggleIgnoredRole(guildID, roleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.ignoredRoles, guildID, roleID)
}

func (s *Store) IsChannelIgnored(guildID, channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ignoredChannels[guildID][channelID]
	return ok
}

func (s *Store) IsUserIgnored(guildID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ignoredUsers[guildID][userID]
	return ok
}

func (s *Store) IsRoleIgnored(guildID string, roleIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.ignoredRoles[guildID]
	for _, id := range roleIDs {
		if _, ok := guild[id]; ok {
			return true
		}
	}
	return false
}

// Role persistence

func (s *Store) SetRolePersist(guildID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		s.rolePersist[guildID] = true
		return
	}
	delete(s.rolePersist, guildID)
	delete(s.persistRoles, guildID)
}

func (s *Store) RolePersistEnabled(guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rolePersist[guildID]
}

func (s *Store) SnapshotRoles(guildID, userID string, roleIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(roleIDs) == 0 {
		return
	}
	guild := s.persistRoles[guildID]
	if guild == nil {
		guild = make(map[string][]string)
		s.persistRoles[guildID] = guild
	}
	roles := make([]string, len(roleIDs))
	copy(roles, roleIDs)
	guild[userID] = roles
}

func (s *Store) PersistedRoles(guildID, userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.persistRoles[guildID][userID]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Joinable ranks

func (s *Store) AddRank(guildID, roleID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.ranks[guildID]
	if guild == nil {
		guild = make(map[string]string)
		s.ranks[guildID] = guild
	}
	guild[roleID] = name
}

func (s *Store) RemoveRank(guildID, roleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guild := s.ranks[guildID]; guild != nil {
		delete(guild, roleID)
	}
}

func (s *Store) IsRank(guildID, roleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ranks[guildID][roleID]
	return ok
}

func (s *Store) Ranks(guildID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.ranks[guildID]))
	for roleID, name := range s.ranks[guildID] {
		out[roleID] = name
	}
	return out
}
