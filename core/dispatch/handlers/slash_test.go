package handlers

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"XPBot/core/services"
)

func TestAnswerReply(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"answered", nil, "✅ Answered suggestion as Good Idea! Please elaborate on your answer below."},
		{"rename rate limited", services.ErrRenamePending, "✅ Answered suggestion as Good Idea! Please elaborate on your answer below. " + suggestionRateLimitNotice},
		{"outside the channel", services.ErrNotSuggestionThread, "❌ This command can only be used in threads in <#sugg>."},
		{"not a developer", services.ErrNotDeveloper, "❌ You don’t have permission to run this command!"},
		{"bad answer", services.ErrUnknownAnswer, "❌ That is not a valid answer."},
		{"wrapped error", fmt.Errorf("answer: %w", services.ErrUneditable), "❌ This suggestion can not be edited."},
		{"unexpected error", errors.New("boom"), "❌ Something went wrong, please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerReply(tt.err, "Good Idea", "sugg"); got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestEditReply(t *testing.T) {
	if got := editReply(nil, "sugg"); got != "✅ Successfully edited suggestion!" {
		t.Errorf("Unexpected reply '%s'", got)
	}
	if got := editReply(services.ErrRenamePending, "sugg"); !strings.HasSuffix(got, suggestionRateLimitNotice) {
		t.Errorf("Expected the rate limit notice, got '%s'", got)
	}
	if got := editReply(services.ErrNotSuggestionAuthor, "sugg"); got != "❌ You don’t have permission to run this command!" {
		t.Errorf("Unexpected reply '%s'", got)
	}
}

func TestSuggestCommandLimitsTitle(t *testing.T) {
	c := NewSuggestionCommands(nil, fakeResolver{})
	commands := c.SlashCommands()

	if len(commands) != 3 {
		t.Fatalf("Expected 3 commands, got %d", len(commands))
	}
	if commands[0].Name != "suggest" || commands[0].Options[0].MaxLength != services.MaxSuggestionTitleLength {
		t.Errorf("Expected /suggest to limit the title to %d characters", services.MaxSuggestionTitleLength)
	}
	answers := commands[1].Options[0].Choices
	if len(answers) != len(services.SuggestionAnswers) {
		t.Fatalf("Expected %d answer choices, got %d", len(services.SuggestionAnswers), len(answers))
	}
	if answers[0].Name != "Good Idea" || answers[0].Value != "Good Idea" {
		t.Errorf("Unexpected first choice %v", answers[0])
	}
}

func TestJoinWithAnd(t *testing.T) {
	tests := []struct {
		items []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b and c"},
	}
	for _, tt := range tests {
		if got := joinWithAnd(tt.items); got != tt.want {
			t.Errorf("joinWithAnd(%v) = '%s', expected '%s'", tt.items, got, tt.want)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("*bold* _it_ `code` a|b"); got != "\\*bold\\* \\_it\\_ \\`code\\` a\\|b" {
		t.Errorf("Unexpected escape '%s'", got)
	}
}

func TestNotFoundReply(t *testing.T) {
	if got := notFoundReply("`drop` tables"); got != "❌ Could not find that addon (`'drop' tables`)!" {
		t.Errorf("Unexpected reply '%s'", got)
	}
	if got := notFoundReply(""); got != "❌ Could not find that addon!" {
		t.Errorf("Unexpected reply '%s'", got)
	}
}

func TestAddonEmbed(t *testing.T) {
	match := services.AddonMatch{Addon: services.Addon{Id: "editor-devtools", Name: "Developer tools"}, Score: 87}
	manifest := &services.AddonManifest{
		Name:         "Developer tools",
		Description:  "Adds *editor* options",
		Credits:      []services.AddonCredit{{Name: "Griffpatch", Link: "https://scratch.mit.edu/users/griffpatch/"}, {Name: "TheColaber"}},
		Permissions:  []string{"clipboardWrite"},
		VersionAdded: "1.0.0",
		LatestUpdate: &services.AddonUpdate{Version: "1.30.0"},
	}

	embed := addonEmbed(match, manifest, "devtools")

	if embed.Title != "Developer tools" || embed.Color != addonThemeColor {
		t.Errorf("Unexpected title or color: %s %x", embed.Title, embed.Color)
	}
	if embed.URL != "https://scratch.mit.edu/scratch-addons-extension/settings#addon-editor-devtools" {
		t.Errorf("Unexpected URL '%s'", embed.URL)
	}
	if !strings.HasPrefix(embed.Description, "Adds \\*editor\\* options\n[See source code](") {
		t.Errorf("Expected escaped description, got '%s'", embed.Description)
	}
	if !strings.Contains(embed.Description, "additional permissions") {
		t.Error("Expected the permissions notice")
	}
	if embed.Footer.Text != "87% match • devtools" {
		t.Errorf("Unexpected footer '%s'", embed.Footer.Text)
	}

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	want := map[string]string{
		"Contributors":  "[Griffpatch](https://scratch.mit.edu/users/griffpatch/) and TheColaber",
		"Group":         "Scratch Editor Features",
		"Version added": "1.0.0 (last updated in 1.30.0)",
	}
	for name, value := range want {
		if fields[name] != value {
			t.Errorf("Field %s: expected '%s', got '%s'", name, value, fields[name])
		}
	}
}

func TestAddonEmbed_RandomEasterEgg(t *testing.T) {
	match := services.AddonMatch{Addon: services.Addon{Id: "cat-blocks"}}
	manifest := &services.AddonManifest{Name: "Cat blocks", Tags: []string{"easterEgg"}, VersionAdded: "1.2.0"}

	embed := addonEmbed(match, manifest, "")

	if embed.URL != "" {
		t.Errorf("Easter eggs should not link to settings, got '%s'", embed.URL)
	}
	if embed.Footer.Text != "Random addon" {
		t.Errorf("Unexpected footer '%s'", embed.Footer.Text)
	}
	if len(embed.Fields) != 2 {
		t.Errorf("Expected no contributors field, got %d fields", len(embed.Fields))
	}
}
