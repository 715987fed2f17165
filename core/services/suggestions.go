package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"XPBot/core"
	"XPBot/core/leveling"

	"github.com/bwmarrin/discordgo"
)

// MaxSuggestionTitleLength bounds suggestion titles so the thread name fits.
const MaxSuggestionTitleLength = 50

// Suggestion threads archive after a day without activity.
const suggestionArchiveMinutes = 1_440

// Renames are rate limited hard by Discord; past this we report the rename as pending.
const renameTimeout = 3 * time.Second

// Answer is a verdict on a suggestion and the embed colour that goes with it.
type Answer struct {
	Name  string
	Color int
}

var (
	UnansweredSuggestion = Answer{Name: "Unanswered", Color: 0x99AAB5}

	SuggestionAnswers = []Answer{
		{Name: "Good Idea", Color: 0x57F287},
		{Name: "In Development", Color: 0xFEE75C},
		{Name: "Implemented", Color: 0x3498DB},
		{Name: "Possible", Color: 0xE67E22},
		{Name: "Impractical", Color: 0x992D22},
		{Name: "Rejected", Color: 0xED4245},
		{Name: "Impossible", Color: 0x9B59B6},
	}
)

var (
	ErrTitleTooLong        = fmt.Errorf("the title can not be longer than %d characters", MaxSuggestionTitleLength)
	ErrNotSuggestionThread = errors.New("not a suggestion thread")
	ErrNotDeveloper        = errors.New("missing the developer role")
	ErrNotSuggestionAuthor = errors.New("not the author of the suggestion")
	ErrUneditable          = errors.New("suggestion can not be edited")
	ErrUnknownAnswer       = errors.New("unknown answer")
	ErrRenamePending       = errors.New("thread rename is rate limited")
	ErrSuggestionsDisabled = errors.New("no suggestion channel configured")
)

var (
	// "Title | Answer" -> keeps "Title | " in group 1
	answerSuffix = regexp.MustCompile(`^(.+? \| )?[^|]+$`)
	// Avatar URLs carry the user ID: .../avatars/<id>/<hash>.png
	avatarUserId = regexp.MustCompile(`/(\d+)/`)
)

// SuggestionChannel runs the suggestion workflow: each suggestion is an embed
// posted by the bot with a thread started on it, named "<title> | <answer>".
type SuggestionChannel struct {
	api           DiscordAPI
	channelId     string
	developerRole string
	botId         func() string
}

func NewSuggestionChannel(api DiscordAPI, channelId, developerRole string, botId func() string) *SuggestionChannel {
	return &SuggestionChannel{api: api, channelId: channelId, developerRole: developerRole, botId: botId}
}

func (c *SuggestionChannel) ChannelId() string {
	return c.channelId
}

// FindAnswer looks up an answer by name.
func FindAnswer(name string) (Answer, bool) {
	i := slices.IndexFunc(SuggestionAnswers, func(a Answer) bool { return a.Name == name })
	if i < 0 {
		return Answer{}, false
	}
	return SuggestionAnswers[i], true
}

// Create posts a new suggestion by author and opens its discussion thread.
func (c *SuggestionChannel) Create(ctx context.Context, author leveling.Recipient, title, description string) (*discordgo.Message, error) {
	if c.channelId == "" {
		return nil, ErrSuggestionsDisabled
	}
	if len([]rune(title)) > MaxSuggestionTitleLength {
		return nil, ErrTitleTooLong
	}

	message, err := c.api.ChannelMessageSendComplex(c.channelId, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Color:       UnansweredSuggestion.Color,
			Author:      &discordgo.MessageEmbedAuthor{Name: author.Name(), IconURL: author.AvatarURL},
			Title:       title,
			Description: description,
			Footer:      &discordgo.MessageEmbedFooter{Text: UnansweredSuggestion.Name},
		}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to post suggestion: %w", err)
	}

	thread, err := c.api.MessageThreadStartComplex(c.channelId, message.ID, &discordgo.ThreadStart{
		Name:                title + " | " + UnansweredSuggestion.Name,
		AutoArchiveDuration: suggestionArchiveMinutes,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Suggestion by "+author.Username))
	if err != nil {
		return message, fmt.Errorf("failed to start suggestion thread: %w", err)
	}
	core.LogIfError(c.api.ThreadMemberAdd(thread.ID, author.UserId, discordgo.WithContext(ctx)),
		"Failed to add %s to suggestion thread %s", author.UserId, thread.ID)
	return message, nil
}

// Answer records a verdict on the suggestion discussed in threadId. Only
// members holding the developer role may answer. ErrRenamePending means the
// answer was applied but the thread name has not caught up yet.
func (c *SuggestionChannel) Answer(ctx context.Context, threadId string, answerer *discordgo.Member, answerName string) error {
	answer, ok := FindAnswer(answerName)
	if !ok {
		return ErrUnknownAnswer
	}
	thread, err := c.suggestionThread(threadId)
	if err != nil {
		return err
	}
	if c.developerRole != "" && (answerer == nil || !slices.Contains(answerer.Roles, c.developerRole)) {
		return ErrNotDeveloper
	}
	reason := "Thread answered by " + memberTag(answerer)
	c.unarchive(ctx, thread, reason)

	if starter := c.starterMessage(thread); starter != nil && len(starter.Embeds) > 0 {
		embed := *starter.Embeds[0]
		embed.Color = answer.Color
		embed.Footer = &discordgo.MessageEmbedFooter{Text: answer.Name}
		_, err = c.api.ChannelMessageEditComplex(
			discordgo.NewMessageEdit(starter.ChannelID, starter.ID).SetEmbeds([]*discordgo.MessageEmbed{&embed}),
			discordgo.WithContext(ctx))
		core.LogIfError(err, "Failed to recolour suggestion %s", starter.ID)
	}

	return c.rename(ctx, thread, answerSuffix.ReplaceAllString(thread.Name, "${1}"+answer.Name), reason)
}

// Edit changes the title and/or body of a suggestion. Only its author may edit it.
func (c *SuggestionChannel) Edit(ctx context.Context, threadId, userId, title, body string) error {
	if len([]rune(title)) > MaxSuggestionTitleLength {
		return ErrTitleTooLong
	}
	thread, err := c.suggestionThread(threadId)
	if err != nil {
		return err
	}
	starter := c.starterMessage(thread)
	if starter == nil || len(starter.Embeds) == 0 {
		return ErrUneditable
	}
	if suggestionAuthor(starter) != userId {
		return ErrNotSuggestionAuthor
	}
	c.unarchive(ctx, thread, "Thread edited")

	embed := *starter.Embeds[0]
	if body != "" {
		embed.Description = body
	}
	if title != "" {
		embed.Title = title
	}
	_, err = c.api.ChannelMessageEditComplex(
		discordgo.NewMessageEdit(starter.ChannelID, starter.ID).SetEmbeds([]*discordgo.MessageEmbed{&embed}),
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit suggestion %s: %w", starter.ID, err)
	}

	if title == "" {
		return nil
	}
	answer := thread.Name
	if i := strings.LastIndex(answer, " | "); i >= 0 {
		answer = answer[i+len(" | "):]
	} else {
		answer = UnansweredSuggestion.Name
	}
	return c.rename(ctx, thread, title+" | "+answer, "Suggestion edited")
}

func (c *SuggestionChannel) suggestionThread(threadId string) (*discordgo.Channel, error) {
	if c.channelId == "" {
		return nil, ErrSuggestionsDisabled
	}
	thread, err := c.api.Channel(threadId)
	if err != nil || !thread.IsThread() || thread.ParentID != c.channelId {
		return nil, ErrNotSuggestionThread
	}
	return thread, nil
}

// starterMessage returns the bot's suggestion embed the thread was started on, if there is one.
// A thread started from a message shares that message's ID.
func (c *SuggestionChannel) starterMessage(thread *discordgo.Channel) *discordgo.Message {
	starter, err := c.api.ChannelMessage(thread.ParentID, thread.ID)
	if err != nil {
		core.LogDebugF("No starter message for thread %s: %s", thread.ID, err)
		return nil
	}
	if starter.Author != nil && c.botId != nil && starter.Author.ID != c.botId() {
		return nil
	}
	return starter
}

func (c *SuggestionChannel) unarchive(ctx context.Context, thread *discordgo.Channel, reason string) {
	if thread.ThreadMetadata == nil || !thread.ThreadMetadata.Archived {
		return
	}
	archived := false
	_, err := c.api.ChannelEdit(thread.ID, &discordgo.ChannelEdit{Archived: &archived},
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	core.LogIfError(err, "Failed to unarchive thread %s", thread.ID)
}

func (c *SuggestionChannel) rename(ctx context.Context, thread *discordgo.Channel, name, reason string) error {
	if name == thread.Name {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, renameTimeout)
	defer cancel()
	_, err := c.api.ChannelEdit(thread.ID, &discordgo.ChannelEdit{Name: name},
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrRenamePending
	case err != nil:
		return fmt.Errorf("failed to rename thread %s: %w", thread.ID, err)
	}
	return nil
}

// suggestionAuthor recovers the suggesting user's ID from the embed author icon.
func suggestionAuthor(starter *discordgo.Message) string {
	embed := starter.Embeds[0]
	if embed.Author == nil {
		return ""
	}
	if match := avatarUserId.FindStringSubmatch(embed.Author.IconURL); match != nil {
		return match[1]
	}
	return ""
}

func memberTag(m *discordgo.Member) string {
	if m == nil || m.User == nil {
		return "unknown"
	}
	return m.User.Username
}
