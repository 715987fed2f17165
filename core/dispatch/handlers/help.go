package handlers

import (
	"sort"
	"strings"

	"XPBot/core"
	"XPBot/core/dispatch"
)

// OwnerGroup holds commands only bot owners may run; its help is hidden from everyone else.
const OwnerGroup = "Owner"

type help struct {
	dispatch.NoOpMessageHandler
}

func init() {
	dispatch.Register(&help{},
		[]dispatch.MessageCommand{
			{Command: "help", Help: "List the available commands."},
		},
		nil, false)
}

func (*help) HandleCommand(m *dispatch.Message) bool {
	m.ReplyToChannel("%s", helpText(dispatch.Dispatcher.Help(), core.Settings.IsOwner(m.Author.ID)))
	return true
}

func helpText(groups map[string][]string, isOwner bool) string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		if name == OwnerGroup && !isOwner {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var output []string
	for _, name := range names {
		title := name
		if title == "" {
			title = "General"
		}
		output = append(output, "**"+title+":**\n\t"+strings.Join(groups[name], "\n\t"))
	}
	if len(output) == 0 {
		return "No commands available."
	}
	return strings.Join(output, "\n")
}
