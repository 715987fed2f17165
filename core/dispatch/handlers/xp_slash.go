package handlers

import (
	"context"

	"XPBot/core"

	"github.com/bwmarrin/discordgo"
)

var leaderboardMinPage = 1.0

var xpSlashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "xp",
		Description: "Commands to view users’ XP amounts",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "rank",
				Description: "View a user’s XP rank",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "User to view (defaults to you)",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "top",
				Description: "View the server XP leaderboard",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "page",
						Description: "Page to view (defaults to 1)",
						Required:    false,
						MinValue:    &leaderboardMinPage,
					},
				},
			},
		},
	},
}

func (c *XPCommands) SlashCommands() []*discordgo.ApplicationCommand {
	return xpSlashCommands
}

// HandleSlashCommand handles /xp interactions.
func (c *XPCommands) HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	data := i.ApplicationCommandData()
	if data.Name != "xp" || len(data.Options) == 0 {
		return false
	}

	sub := data.Options[0]
	ctx := context.Background()
	switch sub.Name {
	case "rank":
		user := interactionUser(i)
		for _, opt := range sub.Options {
			if opt.Name == "user" {
				user = opt.UserValue(s)
			}
		}
		if user == nil {
			return false
		}
		standing, err := c.engine.Rank(ctx, user.ID)
		if err != nil {
			core.LogErrorF("Failed to look up rank of %s: %s", user.ID, err)
			respond(s, i, "Couldn't load the leaderboard right now.", true)
			return true
		}
		respondEmbed(s, i, rankEmbed(user.Username, standing))
	case "top":
		page := 1
		for _, opt := range sub.Options {
			if opt.Name == "page" {
				page = int(opt.IntValue())
			}
		}
		records, err := c.engine.Leaderboard(ctx)
		if err != nil {
			core.LogErrorF("Failed to load leaderboard: %s", err)
			respond(s, i, "Couldn't load the leaderboard right now.", true)
			return true
		}
		respondEmbed(s, i, leaderboardEmbed(records, page))
	default:
		return false
	}
	return true
}
