package handlers

import (
	"fmt"
	"strings"

	"XPBot/core/dispatch"

	"github.com/bwmarrin/discordgo"
	"github.com/thoas/go-funk"
)

type ident struct {
	dispatch.NoOpMessageHandler
}

func init() {
	dispatch.Register(&ident{},
		[]dispatch.MessageCommand{
			{Command: "id", Help: "Return Discord ID for the user, or all @mentioned users"},
		},
		nil, false)
}

func (*ident) HandleCommand(m *dispatch.Message) bool {
	m.ReplyToChannel("%s", identities(m.Author, m.Mentions, len(m.Args) > 0))
	return true
}

func identities(author *discordgo.User, mentions []*discordgo.User, hasArgs bool) string {
	var lines []string
	addUser := func(user *discordgo.User) {
		lines = append(lines, fmt.Sprintf("%v has id %s", user.Username, user.ID))
	}
	if !hasArgs {
		addUser(author)
	} else {
		funk.ForEach(mentions, addUser)
	}
	if len(lines) == 0 {
		return "No one was identified"
	}
	return "Identities:\n\t" + strings.Join(lines, "\n\t")
}
