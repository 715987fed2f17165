package services

import (
	"context"
	"sort"
	"testing"

	"XPBot/core"
	"XPBot/core/database"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMemberEvents(t *testing.T, api *fakeAPI) (*MemberEvents, *database.DB) {
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	resolver := NewResolver(api, nil, "guild")
	epic := NewRoleDesignations(api, resolver, "guild", "epic")
	events := NewMemberEvents(api, db, resolver, epic, "guild", core.ChannelConfig{Welcome: "welcome", General: "general", Info: "info"})
	events.pick = func(int) int { return 0 }
	return events, db
}

func invite(inviterId string, uses int) *discordgo.Invite {
	return &discordgo.Invite{Inviter: &discordgo.User{ID: inviterId}, Uses: uses}
}

func TestGreeting(t *testing.T) {
	events, _ := setupMemberEvents(t, newFakeAPI())

	assert.Equal(t, "👋 Everybody please welcome <@1> to Scratch Addons; they’re our 42nd member!",
		events.greeting("<@1>", "Scratch Addons", 42))
	assert.Equal(t, "👋 Everybody please welcome <@1> to Scratch Addons; they’re our 1087th member! (WAS THAT THE BITE OF 87?!?!?)",
		events.greeting("<@1>", "Scratch Addons", 1087))

	events.pick = func(n int) int { return n - 1 }
	assert.Equal(t, "👋 Welcome:tm: <@1>! You’re our 3rd member!", events.greeting("<@1>", "x", 3))
}

func TestInviteCounts(t *testing.T) {
	counts := inviteCounts([]*discordgo.Invite{
		invite("a", 5), invite("b", 1), invite("a", 16), {Uses: 99},
	})

	assert.Equal(t, map[string]int{"a": 21, "b": 1}, counts)
}

func TestOnJoin_RewardsInviters(t *testing.T) {
	api := newFakeAPI()
	api.addMember("prolific", false)
	api.addMember("casual", false)
	api.addMember("robot", true)
	api.addMember("already", false, "epic")
	api.invites = []*discordgo.Invite{
		invite("prolific", 12), invite("prolific", 8),
		invite("casual", 3),
		invite("robot", 50),
		invite("already", 40),
		invite("departed", 30),
	}
	events, _ := setupMemberEvents(t, api)
	newcomer := api.addMember("new", false)

	events.OnJoin(context.Background(), newcomer, "Scratch Addons", 100)

	assert.Equal(t, []roleAdd{{UserId: "prolific", RoleId: "epic"}}, api.roleAdds)
	var channels []string
	for _, m := range api.sent {
		channels = append(channels, m.ChannelId)
	}
	sort.Strings(channels)
	assert.Equal(t, []string{"general", "welcome"}, channels)
}

func TestOnJoin_IgnoresOtherGuilds(t *testing.T) {
	api := newFakeAPI()
	events, _ := setupMemberEvents(t, api)

	events.OnJoin(context.Background(), &discordgo.Member{GuildID: "elsewhere", User: &discordgo.User{ID: "1"}}, "x", 2)

	assert.Empty(t, api.sent)
}

func TestRolesRestoredOnRejoin(t *testing.T) {
	api := newFakeAPI()
	events, _ := setupMemberEvents(t, api)
	ctx := context.Background()

	member := &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}, Roles: []string{"r1", "r2"}}
	events.OnMemberUpdate(ctx, member, nil)

	// a role-less update with nothing cached before it must not wipe what was saved
	events.OnMemberUpdate(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}}, nil)

	events.OnJoin(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}}, "x", 10)

	assert.Equal(t, []roleAdd{{UserId: "1", RoleId: "r1"}, {UserId: "1", RoleId: "r2"}}, api.roleAdds)
}

func TestRolesRemovedByModeratorStayRemovedOnRejoin(t *testing.T) {
	api := newFakeAPI()
	events, _ := setupMemberEvents(t, api)
	ctx := context.Background()

	granted := &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}, Roles: []string{"mod-granted"}}
	events.OnMemberUpdate(ctx, granted, nil)

	stripped := &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}, Roles: []string{}}
	events.OnMemberUpdate(ctx, stripped, granted)

	events.OnJoin(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}}, "x", 10)

	assert.Empty(t, api.roleAdds)
}

func TestRejoinUpdateKeepsSavedRoles(t *testing.T) {
	api := newFakeAPI()
	events, _ := setupMemberEvents(t, api)
	ctx := context.Background()

	events.OnMemberUpdate(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}, Roles: []string{"r1"}}, nil)

	// rejoined, cached without roles, then updated without roles
	rejoined := &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}}
	events.OnMemberUpdate(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1"}}, rejoined)

	events.OnJoin(ctx, rejoined, "x", 10)

	assert.Equal(t, []roleAdd{{UserId: "1", RoleId: "r1"}}, api.roleAdds)
}

func TestOnJoin_RenamesInfoChannel(t *testing.T) {
	api := newFakeAPI()
	events, _ := setupMemberEvents(t, api)

	events.OnJoin(context.Background(), &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1", Username: "newbie"}}, "x", 12_341)

	require.Len(t, api.channelEdits, 1)
	assert.Equal(t, "info", api.channelEdits[0].ChannelId)
	assert.Equal(t, "Info - 12.34K members", api.channelEdits[0].Data.Name)
}

func TestInfoChannelName(t *testing.T) {
	assert.Equal(t, "Info - 41 members", infoChannelName(42))
	assert.Equal(t, "Info - 999 members", infoChannelName(1000))
	assert.Equal(t, "Info - 1.00K members", infoChannelName(1001))
}

func TestOnJoin_FixesNickname(t *testing.T) {
	api := newFakeAPI()
	events, _ := setupMemberEvents(t, api)
	ctx := context.Background()

	events.OnJoin(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "1", Username: "alice", GlobalName: "!!!Alice"}}, "x", 10)
	events.OnJoin(ctx, &discordgo.Member{GuildID: "guild", User: &discordgo.User{ID: "2", Username: "bob", GlobalName: "Bob"}}, "x", 11)

	assert.Equal(t, []nicknameChange{{UserId: "1", Nickname: "Alice"}}, api.nicknames)
}
