package handlers

import (
	"XPBot/core/dispatch"
)

type ping struct {
	dispatch.NoOpMessageHandler
}

func init() {
	dispatch.Register(&ping{},
		[]dispatch.MessageCommand{
			{Command: "ping", Help: "Simple command to check that bot is alive"},
			{Command: "pong", Help: "Simple command to check that bot is alive"},
		},
		[]dispatch.MessageCommand{{Command: "test", Help: "Simple test prefix command"}},
		true)
}

// pingReply answers ping with pong and the other way around.
func pingReply(word string) (string, bool) {
	switch word {
	case "ping":
		return "Pong!", true
	case "pong":
		return "Ping!", true
	}
	return "", false
}

func (*ping) reply(m *dispatch.Message, word string) bool {
	reply, ok := pingReply(word)
	if ok {
		m.ReplyToChannel("%s", reply)
	}
	return ok
}

func (h *ping) HandleCommand(m *dispatch.Message) bool {
	return h.reply(m, m.Command)
}

// testping, testpong
func (h *ping) HandlePrefix(prefix string, m *dispatch.Message) bool {
	return h.reply(m, m.Command[len(prefix):])
}

// anyping, anypong
func (h *ping) HandleAnything(m *dispatch.Message) bool {
	if len(m.Command) <= len("any") || m.Command[:len("any")] != "any" {
		return false
	}
	return h.reply(m, m.Command[len("any"):])
}
