package core

func (s *SettingsStorage) SetTestData(channels ChannelConfig, roles RoleConfig, guildId string) {
	s.data.Channels = channels
	s.data.Roles = roles
	s.data.GuildId = guildId
}
