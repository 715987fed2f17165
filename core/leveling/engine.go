// Package leveling turns activity into XP, levels and the top 1% epic role.
//
// The Engine owns no Discord state. It reads and writes the XP collection
// through a Store, announces through a Notifier and hands out the epic role
// through Designations; main wires discordgo-backed implementations of each.
package leveling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"XPBot/core"
	"XPBot/core/database"
)

// DefaultGrant is the XP a regular message is worth.
const DefaultGrant int64 = 5

// A recipient ranked strictly inside this fraction of the leaderboard earns the epic role.
const epicPercentile = 0.01

const epicReason = "Reached the top 1% of the XP leaderboard"

var ErrInvalidAmount = errors.New("xp amount must be positive")

// Store persists the XP collection as a whole snapshot.
type Store interface {
	LoadXP(ctx context.Context) ([]database.XPRecord, error)
	SaveXP(ctx context.Context, records []database.XPRecord) error
}

// Channel names the role of the channel an announcement goes to.
type Channel string

const (
	ChannelLevelUp          Channel = "level-up"
	ChannelEpicAnnouncement Channel = "epic-announcement"
)

// Announcement is what the engine asks a Notifier to post.
type Announcement struct {
	Channel   Channel
	Recipient Recipient
	Progress  Progress // set for ChannelLevelUp
}

// Notifier posts announcements. Failures are logged by the engine and otherwise ignored.
type Notifier interface {
	Notify(ctx context.Context, a Announcement) error
}

// Designations manages the epic role.
type Designations interface {
	Has(ctx context.Context, userId string) (bool, error)
	Grant(ctx context.Context, userId, reason string) error
}

type Engine struct {
	store        Store
	notifier     Notifier
	designations Designations // nil disables top 1% promotion

	// Serialises load-modify-save so concurrent grants can't drop each other.
	mu sync.Mutex
}

// NewEngine wires an engine. notifier and designations may be nil.
func NewEngine(store Store, notifier Notifier, designations Designations) *Engine {
	return &Engine{store: store, notifier: notifier, designations: designations}
}

// Grant adds amount XP to the recipient, announces a level change and promotes
// the recipient into the epic role when they reach the top 1%.
// Only persistence errors are returned; the XP is saved before anything is announced.
func (e *Engine) Grant(ctx context.Context, to Recipient, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	records, oldXp, newXp, err := e.add(ctx, to.UserId, amount)
	if err != nil {
		return err
	}

	oldLevel, newLevel := LevelForXP(oldXp), LevelForXP(newXp)
	if oldLevel != newLevel {
		core.LogInfoF("%s reached level %d (%d xp)", to.UserId, newLevel, newXp)
		e.notify(ctx, Announcement{Channel: ChannelLevelUp, Recipient: to, Progress: ProgressFor(newXp)})
	}

	e.promote(ctx, to, records)
	return nil
}

func (e *Engine) add(ctx context.Context, userId string, amount int64) ([]database.XPRecord, int64, int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.LoadXP(ctx)
	if err != nil {
		return nil, 0, 0, err
	}

	var oldXp int64
	index := findRecord(records, userId)
	if index >= 0 {
		oldXp = records[index].XP
	}
	newXp := saturatingAdd(oldXp, amount)
	if index >= 0 {
		records[index].XP = newXp
	} else {
		records = append(records, database.XPRecord{User: userId, XP: newXp})
	}

	if err = e.store.SaveXP(ctx, records); err != nil {
		return nil, 0, 0, err
	}
	return records, oldXp, newXp, nil
}

// promote grants the epic role when the recipient sits strictly inside the top 1%.
func (e *Engine) promote(ctx context.Context, to Recipient, records []database.XPRecord) {
	if e.designations == nil || !to.IsMember {
		return
	}
	rank := rankOf(sortedByXP(records), to.UserId)
	if rank < 0 || !inTopPercentile(rank, len(records)) {
		return
	}

	has, err := e.designations.Has(ctx, to.UserId)
	if err != nil {
		core.LogWarnF("Failed to look up epic role for %s: %s", to.UserId, err)
		return
	}
	if has {
		return
	}
	if err = e.designations.Grant(ctx, to.UserId, epicReason); err != nil {
		core.LogWarnF("Failed to grant epic role to %s: %s", to.UserId, err)
		return
	}
	core.LogInfoF("%s entered the top 1%% at rank %d of %d", to.UserId, rank+1, len(records))
	e.notify(ctx, Announcement{Channel: ChannelEpicAnnouncement, Recipient: to})
}

func (e *Engine) notify(ctx context.Context, a Announcement) {
	if e.notifier == nil {
		return
	}
	core.LogIfError(e.notifier.Notify(ctx, a), "Failed to post %s announcement for %s", a.Channel, a.Recipient.UserId)
}

// Standing is a user's place on the leaderboard.
type Standing struct {
	Progress
	UserId string
	Rank   int // 1-based, 0 when the user has no XP record
	Total  int // users on the leaderboard
}

// Rank looks up a user's current standing.
func (e *Engine) Rank(ctx context.Context, userId string) (Standing, error) {
	records, err := e.store.LoadXP(ctx)
	if err != nil {
		return Standing{}, err
	}
	sorted := sortedByXP(records)
	standing := Standing{UserId: userId, Rank: rankOf(sorted, userId) + 1, Total: len(sorted)}
	var xp int64
	if standing.Rank > 0 {
		xp = sorted[standing.Rank-1].XP
	}
	standing.Progress = ProgressFor(xp)
	return standing, nil
}

// Leaderboard returns every XP record, highest XP first.
func (e *Engine) Leaderboard(ctx context.Context) ([]database.XPRecord, error) {
	records, err := e.store.LoadXP(ctx)
	if err != nil {
		return nil, err
	}
	return sortedByXP(records), nil
}

func findRecord(records []database.XPRecord, userId string) int {
	for i, record := range records {
		if record.User == userId {
			return i
		}
	}
	return -1
}

// sortedByXP returns a copy of records ordered by XP descending. Ties keep stored order.
func sortedByXP(records []database.XPRecord) []database.XPRecord {
	sorted := make([]database.XPRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].XP > sorted[j].XP
	})
	return sorted
}

// rankOf returns the 0-based position of userId in sorted, or -1.
func rankOf(sorted []database.XPRecord, userId string) int {
	return findRecord(sorted, userId)
}

func inTopPercentile(rank, total int) bool {
	return total > 0 && float64(rank)/float64(total) < epicPercentile
}
