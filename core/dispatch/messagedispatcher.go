package dispatch

import (
	"sort"
	"strings"
	"sync"

	"XPBot/core"

	"github.com/bwmarrin/discordgo"
	"github.com/thoas/go-funk"
)

// This class will parse and dispatch commands to the appropriate command handler.
// It also filters out any response from messages sent by itself, and which don't have the proper
// command prefix, as defined in the config file
type MessageDispatcher struct {
	mu sync.RWMutex
	// allows prefix handling, i.e "randomcat" and "randomdog" could both go to a "random" prefix handler
	prefixHandlers map[string][]MessageHandler
	// requires either just the command, i.e "rank" or command with arguments "rank @someone"
	commandHandlers map[string][]MessageHandler
	// Anything matching
	anythingHandlers []MessageHandler
	// group -> help lines
	help map[string][]string
}

func NewMessageDispatcher() *MessageDispatcher {
	return &MessageDispatcher{
		prefixHandlers:  map[string][]MessageHandler{},
		commandHandlers: map[string][]MessageHandler{},
		help:            map[string][]string{},
	}
}

var Dispatcher = NewMessageDispatcher()

func Register(handler MessageHandler, commands, prefixes []MessageCommand, wildcard bool) {
	Dispatcher.Register(handler, commands, prefixes, wildcard)
}

func Dispatch(session *discordgo.Session, message *discordgo.Message) {
	Dispatcher.Dispatch(session, message)
}

func (dispatcher *MessageDispatcher) Register(handler MessageHandler, commands, prefixes []MessageCommand, wildcard bool) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	funk.ForEach(prefixes, func(prefix MessageCommand) {
		dispatcher.addHandlerForCommand(prefix, dispatcher.prefixHandlers, handler)
	})

	funk.ForEach(commands, func(cmd MessageCommand) {
		dispatcher.addHandlerForCommand(cmd, dispatcher.commandHandlers, handler)
	})

	if wildcard {
		dispatcher.anythingHandlers = append(dispatcher.anythingHandlers, handler)
	}
}

// Parse and dispatch the message. Returns true if a handler processed it.
func (dispatcher *MessageDispatcher) Dispatch(session *discordgo.Session, message *discordgo.Message) bool {
	// Short-circuit if author of the message is the bot itself to avoid loops
	if message.Author == nil || message.Author.Bot || (session.State.User != nil && message.Author.ID == session.State.User.ID) {
		return false
	}

	// Ensure that the string has the prefix we're programmed to listen to
	trimmed := strings.TrimPrefix(message.Content, core.Settings.CommandPrefix())
	if trimmed == message.Content {
		return false
	}

	args := parseArgs(trimmed)

	// Just a bunch of whitespaces
	if len(args) == 0 {
		return false
	}

	core.LogDebug("Parsed parameters: ", args)

	m := &Message{
		Message: message,
		Session: session,
		Command: strings.ToLower(args[0]),
		Args:    args[1:],
		IsPM:    message.GuildID == "",
	}

	dispatcher.mu.RLock()
	defer dispatcher.mu.RUnlock()

	for _, handler := range dispatcher.commandHandlers[m.Command] {
		if handler.HandleCommand(m) {
			core.LogDebugF("   => %s handled %s.", toName(handler), m.Command)
			return true
		}
	}

	for prefix, handlers := range dispatcher.prefixHandlers {
		if !strings.HasPrefix(m.Command, prefix) {
			continue
		}
		for _, handler := range handlers {
			if handler.HandlePrefix(prefix, m) {
				core.LogDebugF("   => %s handled prefix %s.", toName(handler), prefix)
				return true
			}
		}
	}

	for _, handler := range dispatcher.anythingHandlers {
		if handler.HandleAnything(m) {
			core.LogDebugF("   => %s handled %s.", toName(handler), m.Command)
			return true
		}
	}
	return false
}

// Help returns the registered help lines grouped by command group, groups sorted.
func (dispatcher *MessageDispatcher) Help() map[string][]string {
	dispatcher.mu.RLock()
	defer dispatcher.mu.RUnlock()

	out := make(map[string][]string, len(dispatcher.help))
	for group, lines := range dispatcher.help {
		sorted := append([]string(nil), lines...)
		sort.Strings(sorted)
		out[group] = sorted
	}
	return out
}

// Split the command into parameters, and clean them up.
func parseArgs(content string) []string {
	return funk.FilterString(strings.Fields(content), func(str string) bool {
		return strings.Trim(str, "\t\r") != ""
	})
}

// Helper method to register a command for a handler.
func (dispatcher *MessageDispatcher) addHandlerForCommand(command MessageCommand, dict map[string][]MessageHandler, handler MessageHandler) {
	commandStr := strings.ToLower(command.Command)
	dict[commandStr] = append(dict[commandStr], handler)

	if command.Help != "" {
		group := handler.CommandGroup()
		dispatcher.help[group] = append(dispatcher.help[group],
			"**"+core.Settings.CommandPrefix()+commandStr+"**: "+command.Help)
	}

	if core.IsLogInfo() {
		core.LogInfoF("Registered command: %s for %s", commandStr, toName(handler))
	}
}
