package handlers

import (
	"sync"

	"XPBot/core"

	"github.com/bwmarrin/discordgo"
)

// SlashHandler serves one or more application commands.
type SlashHandler interface {
	SlashCommands() []*discordgo.ApplicationCommand
	// Returns false if the interaction is not for one of its commands.
	HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) bool
}

var (
	slashMu       sync.RWMutex
	slashHandlers []SlashHandler
)

func RegisterSlash(handler SlashHandler) {
	slashMu.Lock()
	defer slashMu.Unlock()
	slashHandlers = append(slashHandlers, handler)
}

// RegisterSlashCommands registers the slash commands with Discord for the configured guild.
func RegisterSlashCommands(s *discordgo.Session) {
	guildId := core.Settings.GuildId()
	if guildId == "" {
		core.LogInfo("GuildId not set, skipping slash command registration")
		return
	}

	slashMu.RLock()
	var commands []*discordgo.ApplicationCommand
	for _, h := range slashHandlers {
		commands = append(commands, h.SlashCommands()...)
	}
	slashMu.RUnlock()

	// Use bulk overwrite for efficiency (single API call instead of one per command)
	registered, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildId, commands)
	if err != nil {
		core.LogErrorF("Failed to register slash commands: %s", err)
		return
	}

	core.LogInfoF("Registered %d slash commands to guild %s", len(registered), guildId)
}

// HandleSlashCommand hands an interaction to the first handler that takes it.
func HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionApplicationCommand {
		return false
	}
	slashMu.RLock()
	handlers := slashHandlers
	slashMu.RUnlock()

	for _, h := range handlers {
		if h.HandleSlashCommand(s, i) {
			return true
		}
	}
	core.LogDebugF("Unhandled slash command %s", i.ApplicationCommandData().Name)
	return false
}

// Get user (works for both guild and DM)
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	core.LogIfError(err, "Failed to respond to interaction %s", i.ID)
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:          []*discordgo.MessageEmbed{embed},
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	core.LogIfError(err, "Failed to respond to interaction %s", i.ID)
}

// stringOption returns the named string option, or "".
func stringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}
