package dispatch

import (
	"fmt"
	"strings"

	"XPBot/core"

	"github.com/bwmarrin/discordgo"
)

// MessageCommand is used when registering a handler.
type MessageCommand struct {
	Command string // Command name or prefix
	Help    string // Help string
}

// Container for a message, session and parsed arguments.
type Message struct {
	*discordgo.Message
	Session *discordgo.Session
	Command string
	Args    []string
	IsPM    bool
}

// Utility method to send quick reply back to the channel
func (m *Message) ReplyToChannel(format string, v ...interface{}) {
	_, err := m.Session.ChannelMessageSend(m.ChannelID, fmt.Sprintf(format, v...))
	core.LogIfError(err, "Failed to reply in channel %s", m.ChannelID)
}

// Utility method to send an embed back to the channel
func (m *Message) ReplyEmbed(embed *discordgo.MessageEmbed) {
	_, err := m.Session.ChannelMessageSendEmbed(m.ChannelID, embed)
	core.LogIfError(err, "Failed to reply in channel %s", m.ChannelID)
}

// Interface used for message handlers
type MessageHandler interface {
	// Process requests for Command with this prefix.
	HandlePrefix(prefix string, m *Message) bool
	// Process Command requests for the specific Command.
	HandleCommand(m *Message) bool
	// Wildcard handling for any Command.
	HandleAnything(m *Message) bool
	// Optional group for this command
	CommandGroup() string
}

// Each message handler can process one or more commands / message responses
type NoOpMessageHandler struct{}

func (*NoOpMessageHandler) CommandGroup() string {
	return ""
}

func (*NoOpMessageHandler) HandlePrefix(string, *Message) bool {
	return false
}

func (*NoOpMessageHandler) HandleCommand(*Message) bool {
	return false
}

func (*NoOpMessageHandler) HandleAnything(*Message) bool {
	return false
}

func toName(handler MessageHandler) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", handler), "*")
}
