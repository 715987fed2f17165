package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// RoleDesignations hands out a single guild role, the epic role.
type RoleDesignations struct {
	api      DiscordAPI
	resolver *Resolver
	guildId  string
	roleId   string
}

func NewRoleDesignations(api DiscordAPI, resolver *Resolver, guildId, roleId string) *RoleDesignations {
	return &RoleDesignations{api: api, resolver: resolver, guildId: guildId, roleId: roleId}
}

func (d *RoleDesignations) RoleId() string {
	return d.roleId
}

// Has reports whether userId holds the role. Users who are not members don't.
func (d *RoleDesignations) Has(_ context.Context, userId string) (bool, error) {
	member := d.resolver.Member(userId)
	if member == nil {
		return false, nil
	}
	return slices.Contains(member.Roles, d.roleId), nil
}

func (d *RoleDesignations) Grant(ctx context.Context, userId, reason string) error {
	err := d.api.GuildMemberRoleAdd(d.guildId, userId, d.roleId,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("failed to add role %s to %s: %w", d.roleId, userId, err)
	}
	return nil
}
