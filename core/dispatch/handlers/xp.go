package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"XPBot/core"
	"XPBot/core/database"
	"XPBot/core/dispatch"
	"XPBot/core/leveling"

	"github.com/bwmarrin/discordgo"
)

const leaderboardPageSize = 10

// XPEngine is the part of the leveling engine the commands use.
type XPEngine interface {
	Grant(ctx context.Context, to leveling.Recipient, amount int64) error
	Rank(ctx context.Context, userId string) (leveling.Standing, error)
	Leaderboard(ctx context.Context) ([]database.XPRecord, error)
}

// RecipientResolver builds leveling recipients for Discord users.
type RecipientResolver interface {
	Recipient(user *discordgo.User, member *discordgo.Member) leveling.Recipient
}

// XPCommands serves !rank, !top, the owner-only !givexp and /xp.
type XPCommands struct {
	engine   XPEngine
	resolver RecipientResolver
}

func NewXPCommands(engine XPEngine, resolver RecipientResolver) *XPCommands {
	return &XPCommands{engine: engine, resolver: resolver}
}

type xp struct {
	dispatch.NoOpMessageHandler
	*XPCommands
}

func (*xp) CommandGroup() string {
	return "XP"
}

type xpAdmin struct {
	dispatch.NoOpMessageHandler
	*XPCommands
}

func (*xpAdmin) CommandGroup() string {
	return OwnerGroup
}

// Register hooks the prefix commands up to dispatcher.
func (c *XPCommands) Register(dispatcher *dispatch.MessageDispatcher) {
	dispatcher.Register(&xp{XPCommands: c},
		[]dispatch.MessageCommand{
			{Command: "rank", Help: "Show your XP and level, or those of the @mentioned user"},
			{Command: "top", Help: "Show the XP leaderboard. Arguments: *[page]*"},
		},
		nil, false)
	dispatcher.Register(&xpAdmin{XPCommands: c},
		[]dispatch.MessageCommand{
			{Command: "givexp", Help: "Grant XP to the @mentioned user. Arguments: *<@user> <amount>*"},
		},
		nil, false)
}

func (h *xp) HandleCommand(m *dispatch.Message) bool {
	switch m.Command {
	case "rank":
		user := m.Author
		if len(m.Mentions) > 0 {
			user = m.Mentions[0]
		}
		standing, err := h.engine.Rank(context.Background(), user.ID)
		if err != nil {
			core.LogErrorF("Failed to look up rank of %s: %s", user.ID, err)
			m.ReplyToChannel("Couldn't load the leaderboard right now.")
			return true
		}
		m.ReplyEmbed(rankEmbed(user.Username, standing))
		return true
	case "top":
		page := 1
		if len(m.Args) > 0 {
			page, _ = strconv.Atoi(m.Args[0])
		}
		records, err := h.engine.Leaderboard(context.Background())
		if err != nil {
			core.LogErrorF("Failed to load leaderboard: %s", err)
			m.ReplyToChannel("Couldn't load the leaderboard right now.")
			return true
		}
		m.ReplyEmbed(leaderboardEmbed(records, page))
		return true
	}
	return false
}

func (h *xpAdmin) HandleCommand(m *dispatch.Message) bool {
	if m.Command != "givexp" {
		return false
	}
	m.ReplyToChannel("%s", h.giveXP(context.Background(), m.Author, core.Settings.IsOwner(m.Author.ID), m.Mentions, m.Args))
	return true
}

// giveXP runs !givexp and returns the reply.
func (c *XPCommands) giveXP(ctx context.Context, author *discordgo.User, isOwner bool, mentions []*discordgo.User, args []string) string {
	if !isOwner {
		return "Only bot owners can grant XP."
	}
	if len(mentions) != 1 || len(args) != 2 {
		return "Usage: givexp <@user> <amount>"
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return fmt.Sprintf("%q is not a positive amount of XP.", args[1])
	}
	user := mentions[0]
	if err = c.engine.Grant(ctx, c.resolver.Recipient(user, nil), amount); err != nil {
		core.LogErrorF("Failed to grant %d xp to %s: %s", amount, user.ID, err)
		return "Couldn't save the XP right now."
	}
	core.LogInfoF("%s granted %d xp to %s", author.ID, amount, user.ID)
	return fmt.Sprintf("Gave %s XP to %s.", core.FormatNumber(amount), user.Username)
}

func rankEmbed(name string, s leveling.Standing) *discordgo.MessageEmbed {
	if s.Rank == 0 {
		return &discordgo.MessageEmbed{
			Title:       name + "’s XP",
			Description: name + " hasn’t earned any XP yet.",
		}
	}
	return &discordgo.MessageEmbed{
		Title: name + "’s XP",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: strconv.Itoa(s.Level), Inline: true},
			{Name: "XP", Value: core.FormatNumber(s.XP), Inline: true},
			{Name: "Rank", Value: fmt.Sprintf("%s/%s", core.FormatNumber(int64(s.Rank)), core.FormatNumber(int64(s.Total))), Inline: true},
			{Name: "Next level", Value: fmt.Sprintf("%s/%s XP remaining", core.FormatNumber(s.Remaining()), core.FormatNumber(s.NextLevelXP))},
		},
	}
}

// leaderboardEmbed renders one page of the leaderboard. Out of range pages are clamped.
func leaderboardEmbed(records []database.XPRecord, page int) *discordgo.MessageEmbed {
	pages := max(1, (len(records)+leaderboardPageSize-1)/leaderboardPageSize)
	page = min(max(page, 1), pages)

	start := (page - 1) * leaderboardPageSize
	end := min(start+leaderboardPageSize, len(records))

	var sb strings.Builder
	for i := start; i < end; i++ {
		r := records[i]
		sb.WriteString(fmt.Sprintf("%d. <@%s>: Level %d (%s XP)\n",
			i+1, r.User, leveling.LevelForXP(r.XP), core.FormatNumber(r.XP)))
	}
	if sb.Len() == 0 {
		sb.WriteString("Nobody has earned any XP yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "XP Leaderboard",
		Description: strings.TrimSuffix(sb.String(), "\n"),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", page, pages)},
	}
}
