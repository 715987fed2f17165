package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"XPBot/core"

	"github.com/bwmarrin/discordgo"
	"github.com/thoas/go-funk"
	"golang.org/x/sync/errgroup"
)

const inviteCheckParallel = 4

var greetings = []string{
	"Everybody please welcome %[1]s to %[2]s; they’re our %[3]s member!",
	"A big shoutout to %[1]s, we’re glad you’ve joined us as our %[3]s member!",
	"Here we go again… %[1]s is here, our %[3]s member!",
	"||Do I always have to let you know when there is a new member?|| %[1]s is here (our %[3]s)!",
	"Is it a bird? Is it a plane? No, it’s %[1]s, our %[3]s member!",
	"Welcome:tm: %[1]s! You’re our %[3]s member!",
}

// RoleStore remembers roles across a member leaving and rejoining.
type RoleStore interface {
	SaveMemberRoles(ctx context.Context, userId string, roleIds []string) error
	FetchMemberRoles(ctx context.Context, userId string) ([]string, error)
}

// MemberEvents reacts to members joining the guild and to their role changes.
type MemberEvents struct {
	api      DiscordAPI
	roles    RoleStore
	resolver *Resolver
	epic     *RoleDesignations // nil disables invite rewards
	guildId  string
	channels core.ChannelConfig
	pick     func(n int) int
}

func NewMemberEvents(api DiscordAPI, roles RoleStore, resolver *Resolver, epic *RoleDesignations, guildId string, channels core.ChannelConfig) *MemberEvents {
	return &MemberEvents{
		api:      api,
		roles:    roles,
		resolver: resolver,
		epic:     epic,
		guildId:  guildId,
		channels: channels,
		pick:     rand.Intn,
	}
}

// OnJoin greets the member, rewards prolific inviters and restores saved roles.
func (m *MemberEvents) OnJoin(ctx context.Context, member *discordgo.Member, guildName string, memberCount int) {
	if member.GuildID != m.guildId || member.User == nil {
		return
	}
	core.LogInfoF("Member %s (%s) joined", member.User.Username, member.User.ID)

	if m.channels.Welcome != "" {
		_, err := m.api.ChannelMessageSend(m.channels.Welcome, m.greeting(member.User.Mention(), guildName, memberCount), discordgo.WithContext(ctx))
		core.LogIfError(err, "Failed to greet %s", member.User.ID)
	}

	m.fixNickname(ctx, member)
	m.rewardInviters(ctx)
	m.restoreRoles(ctx, member)
	m.updateInfoChannel(ctx, memberCount)
}

// OnMemberUpdate remembers the member's current roles so they can be restored
// if the member leaves and comes back. The gateway drops a member's roles
// before the removal event reaches us, so they are tracked on every update.
//
// before is the cached member prior to the update, nil when it wasn't cached.
// A role-less update only clears the saved roles when before still had roles,
// i.e. someone took them away. The role-less update that follows a rejoin has
// no roles on either side and leaves the saved set for restoreRoles.
func (m *MemberEvents) OnMemberUpdate(ctx context.Context, member, before *discordgo.Member) {
	if member.GuildID != m.guildId || member.User == nil {
		return
	}
	if len(member.Roles) == 0 && (before == nil || len(before.Roles) == 0) {
		return
	}
	core.LogIfError(m.roles.SaveMemberRoles(ctx, member.User.ID, member.Roles), "Failed to save roles of member %s", member.User.ID)
}

// fixNickname cleans up unpingable or hoisted display names.
func (m *MemberEvents) fixNickname(ctx context.Context, member *discordgo.Member) {
	nick, change := nicknameFor(member)
	if !change {
		return
	}
	err := m.api.GuildMemberNickname(m.guildId, member.User.ID, nick,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Making nickname pingable"))
	if err != nil {
		core.LogErrorF("Failed to change nickname of %s: %s", member.User.ID, err)
		return
	}
	core.LogInfoF("Changed nickname of %s to %q", member.User.ID, nick)
}

// updateInfoChannel renames the info channel to show the member count, not counting the bot.
func (m *MemberEvents) updateInfoChannel(ctx context.Context, memberCount int) {
	if m.channels.Info == "" || memberCount <= 0 {
		return
	}
	_, err := m.api.ChannelEdit(m.channels.Info, &discordgo.ChannelEdit{Name: infoChannelName(memberCount)},
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Automated update to sync count"))
	core.LogIfError(err, "Failed to rename info channel %s", m.channels.Info)
}

func infoChannelName(memberCount int) string {
	return fmt.Sprintf("Info - %s members", core.CompactCount(int64(memberCount-1)))
}

func (m *MemberEvents) greeting(mention, guildName string, memberCount int) string {
	text := fmt.Sprintf(greetings[m.pick(len(greetings))], mention, guildName, core.Nth(memberCount))
	if strings.Contains(strconv.Itoa(memberCount), "87") {
		text += " (WAS THAT THE BITE OF 87?!?!?)"
	}
	return "👋 " + text
}

// inviteCounts sums invite uses per inviter.
func inviteCounts(invites []*discordgo.Invite) map[string]int {
	counts := map[string]int{}
	funk.ForEach(invites, func(invite *discordgo.Invite) {
		if invite.Inviter == nil {
			return
		}
		counts[invite.Inviter.ID] += invite.Uses
	})
	return counts
}

// rewardInviters gives the epic role to every member whose invites have been used enough times.
func (m *MemberEvents) rewardInviters(ctx context.Context) {
	if m.epic == nil {
		return
	}
	invites, err := m.api.GuildInvites(m.guildId, discordgo.WithContext(ctx))
	if err != nil {
		core.LogErrorF("Failed to fetch invites: %s", err)
		return
	}

	threshold := core.Settings.InviteRewardThreshold()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inviteCheckParallel)
	for inviterId, uses := range inviteCounts(invites) {
		if uses < threshold || core.Settings.IsInviteIgnored(inviterId) {
			continue
		}
		inviterId := inviterId
		g.Go(func() error {
			m.rewardInviter(gctx, inviterId)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *MemberEvents) rewardInviter(ctx context.Context, inviterId string) {
	inviter := m.resolver.Member(inviterId)
	if inviter == nil || inviter.User == nil || inviter.User.Bot {
		return
	}
	has, err := m.epic.Has(ctx, inviterId)
	if err != nil || has {
		return
	}
	threshold := core.Settings.InviteRewardThreshold()
	if err = m.epic.Grant(ctx, inviterId, fmt.Sprintf("Invited %d+ people", threshold)); err != nil {
		core.LogErrorF("Failed to reward inviter %s: %s", inviterId, err)
		return
	}
	core.LogInfoF("Rewarded inviter %s with the epic role", inviterId)
	if m.channels.General == "" {
		return
	}
	_, err = m.api.ChannelMessageSend(m.channels.General,
		fmt.Sprintf("🎊 %s Thanks for inviting %d+ people! Here’s <@&%s> as a thank-you.",
			inviter.User.Mention(), threshold, m.epic.RoleId()),
		discordgo.WithContext(ctx))
	core.LogIfError(err, "Failed to thank inviter %s", inviterId)
}

func (m *MemberEvents) restoreRoles(ctx context.Context, member *discordgo.Member) {
	roles, err := m.roles.FetchMemberRoles(ctx, member.User.ID)
	if err != nil {
		core.LogErrorF("Failed to load saved roles for %s: %s", member.User.ID, err)
		return
	}
	for _, roleId := range roles {
		if roleId == m.guildId {
			continue // @everyone
		}
		err = m.api.GuildMemberRoleAdd(m.guildId, member.User.ID, roleId,
			discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Restoring roles held before leaving"))
		core.LogIfError(err, "Failed to restore role %s to %s", roleId, member.User.ID)
	}
	if len(roles) > 0 {
		core.LogInfoF("Restored %d roles to %s", len(roles), member.User.ID)
	}
}
