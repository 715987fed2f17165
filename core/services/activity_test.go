package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"XPBot/core/leveling"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type grant struct {
	UserId   string
	IsMember bool
	Amount   int64
}

type recordingGranter struct {
	mu     sync.Mutex
	grants []grant
	err    error
}

func (g *recordingGranter) Grant(_ context.Context, to leveling.Recipient, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grants = append(g.grants, grant{UserId: to.UserId, IsMember: to.IsMember, Amount: amount})
	return g.err
}

func setupActivity() (*ActivityTracker, *recordingGranter, *fakeAPI) {
	api := newFakeAPI()
	granter := &recordingGranter{}
	tracker := NewActivityTracker(granter, NewResolver(api, nil, "guild"), "guild", func() string { return "bot" })
	return tracker, granter, api
}

func TestActivity_MessageGrants(t *testing.T) {
	tracker, granter, _ := setupActivity()

	tracker.OnMessage(context.Background(), &discordgo.Message{
		GuildID: "guild",
		Author:  &discordgo.User{ID: "1"},
		Member:  &discordgo.Member{Nick: "one"},
	})

	assert.Equal(t, []grant{{UserId: "1", IsMember: true, Amount: 5}}, granter.grants)
}

func TestActivity_MessagesIgnored(t *testing.T) {
	tests := []struct {
		name    string
		message *discordgo.Message
	}{
		{"other guild", &discordgo.Message{GuildID: "elsewhere", Author: &discordgo.User{ID: "1"}}},
		{"direct message", &discordgo.Message{Author: &discordgo.User{ID: "1"}}},
		{"bot author", &discordgo.Message{GuildID: "guild", Author: &discordgo.User{ID: "2", Bot: true}}},
		{"our own message", &discordgo.Message{GuildID: "guild", Author: &discordgo.User{ID: "bot", Bot: true}}},
		{"no author", &discordgo.Message{GuildID: "guild"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, granter, _ := setupActivity()
			tracker.OnMessage(context.Background(), tt.message)
			assert.Empty(t, granter.grants)
		})
	}
}

func TestActivity_DepartedAuthorStillGrants(t *testing.T) {
	tracker, granter, _ := setupActivity()

	tracker.OnMessage(context.Background(), &discordgo.Message{GuildID: "guild", Author: &discordgo.User{ID: "9"}})

	assert.Equal(t, []grant{{UserId: "9", IsMember: false, Amount: 5}}, granter.grants)
}

func TestActivity_ThreadOwnerGrants(t *testing.T) {
	tracker, granter, api := setupActivity()
	api.addMember("1", false)
	api.addMember("robot", true)
	ctx := context.Background()

	tracker.OnThreadCreate(ctx, &discordgo.Channel{GuildID: "guild", OwnerID: "1"}, true)
	tracker.OnThreadCreate(ctx, &discordgo.Channel{GuildID: "guild", OwnerID: "1"}, false)
	tracker.OnThreadCreate(ctx, &discordgo.Channel{GuildID: "elsewhere", OwnerID: "1"}, true)
	tracker.OnThreadCreate(ctx, &discordgo.Channel{GuildID: "guild", OwnerID: "robot"}, true)
	tracker.OnThreadCreate(ctx, &discordgo.Channel{GuildID: "guild", OwnerID: "departed"}, true)

	assert.Equal(t, []grant{{UserId: "1", IsMember: true, Amount: 5}}, granter.grants)
}

func TestActivity_GrantFailureIsSwallowed(t *testing.T) {
	tracker, granter, _ := setupActivity()
	granter.err = errors.New("disk full")

	assert.NotPanics(t, func() {
		tracker.OnMessage(context.Background(), &discordgo.Message{GuildID: "guild", Author: &discordgo.User{ID: "1"}})
	})
	assert.Len(t, granter.grants, 1)
}
