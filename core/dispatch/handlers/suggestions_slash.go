package handlers

import (
	"context"
	"errors"
	"fmt"

	"XPBot/core"
	"XPBot/core/leveling"
	"XPBot/core/services"

	"github.com/bwmarrin/discordgo"
)

const suggestionRateLimitNotice = "If the thread title does not update immediately, you may have been ratelimited. " +
	"I will automatically change the title once the ratelimit is up (within the next hour)."

// SuggestionService is the suggestion workflow behind the commands.
type SuggestionService interface {
	ChannelId() string
	Create(ctx context.Context, author leveling.Recipient, title, description string) (*discordgo.Message, error)
	Answer(ctx context.Context, threadId string, answerer *discordgo.Member, answer string) error
	Edit(ctx context.Context, threadId, userId, title, body string) error
}

// SuggestionCommands serves /suggest, /answer and /editsuggestion.
type SuggestionCommands struct {
	suggestions SuggestionService
	resolver    RecipientResolver
}

func NewSuggestionCommands(suggestions SuggestionService, resolver RecipientResolver) *SuggestionCommands {
	return &SuggestionCommands{suggestions: suggestions, resolver: resolver}
}

func (c *SuggestionCommands) SlashCommands() []*discordgo.ApplicationCommand {
	answers := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(services.SuggestionAnswers))
	for _, a := range services.SuggestionAnswers {
		answers = append(answers, &discordgo.ApplicationCommandOptionChoice{Name: a.Name, Value: a.Name})
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "suggest",
			Description: "Make a suggestion",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "A short summary of your suggestion",
					Required:    true,
					MaxLength:   services.MaxSuggestionTitleLength,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "suggestion",
					Description: "Your suggestion",
					Required:    true,
				},
			},
		},
		{
			Name:        "answer",
			Description: "Answer a thread in the suggestions channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "answer",
					Description: "Answer to the suggestion",
					Required:    true,
					Choices:     answers,
				},
			},
		},
		{
			Name:        "editsuggestion",
			Description: "Edit your suggestion",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "New title",
					MaxLength:   services.MaxSuggestionTitleLength,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "suggestion",
					Description: "New suggestion text",
				},
			},
		},
	}
}

func (c *SuggestionCommands) HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	data := i.ApplicationCommandData()
	ctx := context.Background()

	switch data.Name {
	case "suggest":
		user := interactionUser(i)
		if i.Member == nil || user == nil {
			respond(s, i, "How would this work in a DM?? 😛", false)
			return true
		}
		title, body := stringOption(data.Options, "title"), stringOption(data.Options, "suggestion")
		message, err := c.suggestions.Create(ctx, c.resolver.Recipient(user, i.Member), title, body)
		if err != nil {
			respond(s, i, suggestionErrorReply(err, c.suggestions.ChannelId()), true)
			return true
		}
		respond(s, i, fmt.Sprintf("✅ Your suggestion was posted! https://discord.com/channels/%s/%s/%s",
			i.GuildID, message.ChannelID, message.ID), true)
	case "answer":
		if i.Member == nil {
			respond(s, i, "How would this work in a DM?? 😛", false)
			return true
		}
		answer := stringOption(data.Options, "answer")
		err := c.suggestions.Answer(ctx, i.ChannelID, i.Member, answer)
		respond(s, i, answerReply(err, answer, c.suggestions.ChannelId()), true)
	case "editsuggestion":
		user := interactionUser(i)
		if user == nil {
			return false
		}
		title, body := stringOption(data.Options, "title"), stringOption(data.Options, "suggestion")
		if title == "" && body == "" {
			respond(s, i, "❌ Give a new title or suggestion text.", true)
			return true
		}
		err := c.suggestions.Edit(ctx, i.ChannelID, user.ID, title, body)
		respond(s, i, editReply(err, c.suggestions.ChannelId()), true)
	default:
		return false
	}
	return true
}

func answerReply(err error, answer, channelId string) string {
	switch {
	case err == nil:
		return fmt.Sprintf("✅ Answered suggestion as %s! Please elaborate on your answer below.", answer)
	case errors.Is(err, services.ErrRenamePending):
		return fmt.Sprintf("✅ Answered suggestion as %s! Please elaborate on your answer below. %s", answer, suggestionRateLimitNotice)
	}
	return suggestionErrorReply(err, channelId)
}

func editReply(err error, channelId string) string {
	switch {
	case err == nil:
		return "✅ Successfully edited suggestion!"
	case errors.Is(err, services.ErrRenamePending):
		return "✅ Successfully edited suggestion! " + suggestionRateLimitNotice
	}
	return suggestionErrorReply(err, channelId)
}

func suggestionErrorReply(err error, channelId string) string {
	switch {
	case errors.Is(err, services.ErrTitleTooLong):
		return fmt.Sprintf("❌ The title can not be longer than %d characters.", services.MaxSuggestionTitleLength)
	case errors.Is(err, services.ErrNotSuggestionThread):
		return fmt.Sprintf("❌ This command can only be used in threads in <#%s>.", channelId)
	case errors.Is(err, services.ErrNotDeveloper), errors.Is(err, services.ErrNotSuggestionAuthor):
		return "❌ You don’t have permission to run this command!"
	case errors.Is(err, services.ErrUneditable):
		return "❌ This suggestion can not be edited."
	case errors.Is(err, services.ErrUnknownAnswer):
		return "❌ That is not a valid answer."
	case errors.Is(err, services.ErrSuggestionsDisabled):
		return "❌ Suggestions are not set up on this server."
	}
	core.LogErrorF("Suggestion command failed: %s", err)
	return "❌ Something went wrong, please try again later."
}
