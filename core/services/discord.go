package services

import (
	"sort"

	"XPBot/core"
	"XPBot/core/leveling"

	"github.com/bwmarrin/discordgo"
)

// DiscordAPI is the part of *discordgo.Session the services call.
type DiscordAPI interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildInvites(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Invite, error)
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageThreadStartComplex(channelID, messageID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ThreadMemberAdd(threadID, memberID string, options ...discordgo.RequestOption) error
}

// Resolver turns gateway users into leveling recipients.
type Resolver struct {
	api     DiscordAPI
	state   *discordgo.State // optional cache consulted before the REST API
	guildId string
}

func NewResolver(api DiscordAPI, state *discordgo.State, guildId string) *Resolver {
	return &Resolver{api: api, state: state, guildId: guildId}
}

// Member returns the guild member for userId, or nil if they are not in the guild.
func (r *Resolver) Member(userId string) *discordgo.Member {
	if r.state != nil {
		if m, err := r.state.Member(r.guildId, userId); err == nil {
			return m
		}
	}
	m, err := r.api.GuildMember(r.guildId, userId)
	if err != nil {
		core.LogDebugF("Could not resolve member %s: %s", userId, err)
		return nil
	}
	return m
}

// Recipient builds a Recipient for user. member may be nil, in which case it is looked up.
func (r *Resolver) Recipient(user *discordgo.User, member *discordgo.Member) leveling.Recipient {
	if member == nil {
		member = r.Member(user.ID)
	}
	recipient := leveling.Recipient{
		UserId:      user.ID,
		Username:    user.Username,
		DisplayName: user.GlobalName,
		AvatarURL:   user.AvatarURL(""),
	}
	if member == nil {
		return recipient
	}
	recipient.IsMember = true
	if member.Nick != "" {
		recipient.DisplayName = member.Nick
	}
	recipient.Color = r.memberColor(member)
	return recipient
}

// memberColor is the colour of the member's highest positioned coloured role.
func (r *Resolver) memberColor(member *discordgo.Member) int {
	if r.state == nil {
		return 0
	}
	guild, err := r.state.Guild(r.guildId)
	if err != nil {
		return 0
	}
	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	roles := make([]*discordgo.Role, 0, len(member.Roles))
	for _, role := range guild.Roles {
		if held[role.ID] {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Position > roles[j].Position
	})
	for _, role := range roles {
		if role.Color != 0 {
			return role.Color
		}
	}
	return 0
}
