package services

import (
	"context"

	"XPBot/core"
	"XPBot/core/leveling"

	"github.com/bwmarrin/discordgo"
)

// Granter is the part of the leveling engine that activity feeds.
type Granter interface {
	Grant(ctx context.Context, to leveling.Recipient, amount int64) error
}

// ActivityTracker turns guild messages and new threads into XP grants.
type ActivityTracker struct {
	engine   Granter
	resolver *Resolver
	guildId  string
	botId    func() string
}

func NewActivityTracker(engine Granter, resolver *Resolver, guildId string, botId func() string) *ActivityTracker {
	return &ActivityTracker{engine: engine, resolver: resolver, guildId: guildId, botId: botId}
}

// OnMessage grants XpPerMessage to the author of a message in the guild.
func (a *ActivityTracker) OnMessage(ctx context.Context, m *discordgo.Message) {
	if m.GuildID != a.guildId || m.Author == nil || m.Author.ID == a.botId() {
		return
	}
	var member *discordgo.Member
	if m.Member != nil {
		// gateway message members come without the user
		copied := *m.Member
		copied.User = m.Author
		member = &copied
	}
	a.grant(ctx, m.Author, member, core.Settings.XpPerMessage())
}

// OnThreadCreate grants XpPerThread to the owner of a newly created thread.
// Threads that merely became visible to the bot are skipped.
func (a *ActivityTracker) OnThreadCreate(ctx context.Context, thread *discordgo.Channel, newlyCreated bool) {
	if thread.GuildID != a.guildId || !newlyCreated || thread.OwnerID == "" {
		return
	}
	member := a.resolver.Member(thread.OwnerID)
	if member == nil || member.User == nil {
		return
	}
	a.grant(ctx, member.User, member, core.Settings.XpPerThread())
}

// grant logs persistence failures; one failed grant must not stop event processing.
func (a *ActivityTracker) grant(ctx context.Context, user *discordgo.User, member *discordgo.Member, amount int64) {
	if user.Bot {
		return
	}
	recipient := a.resolver.Recipient(user, member)
	core.LogIfError(a.engine.Grant(ctx, recipient, amount), "Failed to grant %d xp to %s", amount, user.ID)
}
