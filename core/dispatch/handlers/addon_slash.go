package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"XPBot/core"
	"XPBot/core/services"

	"github.com/bwmarrin/discordgo"
)

const (
	addonThemeColor  = 0xFF7B26
	addonSourceURL   = "https://github.com/ScratchAddons/ScratchAddons/tree/master/addons/%s"
	addonImageURL    = "https://scratchaddons.com/assets/img/addons/%s.png"
	addonSettingsURL = "https://scratch.mit.edu/scratch-addons-extension/settings#addon-%s"
)

// AddonLookup finds addons and their manifests.
type AddonLookup interface {
	Search(query string) (services.AddonMatch, bool)
	Random() (services.Addon, bool)
	Manifest(ctx context.Context, id string) (*services.AddonManifest, error)
}

// AddonCommands serves /addon.
type AddonCommands struct {
	addons AddonLookup
}

func NewAddonCommands(addons AddonLookup) *AddonCommands {
	return &AddonCommands{addons: addons}
}

func (c *AddonCommands) SlashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{{
		Name:        "addon",
		Description: "Replies with information about a specific addon.",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "addon",
			Description: "The name of the addon. Leave empty to learn about a random addon.",
		}},
	}}
}

func (c *AddonCommands) HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	data := i.ApplicationCommandData()
	if data.Name != "addon" {
		return false
	}
	query := strings.TrimSpace(stringOption(data.Options, "addon"))

	var match services.AddonMatch
	found := false
	if query != "" {
		match, found = c.addons.Search(query)
	} else {
		match.Addon, found = c.addons.Random()
	}
	if !found {
		respond(s, i, notFoundReply(query), true)
		return true
	}

	manifest, err := c.addons.Manifest(context.Background(), match.Id)
	if err != nil {
		core.LogErrorF("Failed to load addon %s: %s", match.Id, err)
		respond(s, i, "❌ Couldn't load that addon right now.", true)
		return true
	}
	respondEmbed(s, i, addonEmbed(match, manifest, query))
	return true
}

func notFoundReply(query string) string {
	if query == "" {
		return "❌ Could not find that addon!"
	}
	return fmt.Sprintf("❌ Could not find that addon (`%s`)!", strings.ReplaceAll(query, "`", "'"))
}

func addonEmbed(match services.AddonMatch, manifest *services.AddonManifest, query string) *discordgo.MessageEmbed {
	id := url.PathEscape(match.Id)

	description := escapeMarkdown(manifest.Description) + "\n[See source code](" + fmt.Sprintf(addonSourceURL, id) + ")"
	if len(manifest.Permissions) > 0 {
		description += "\n\n**This addon may require additional permissions to be granted in order to function.**"
	}

	footer := "Random addon"
	if query != "" {
		footer = fmt.Sprintf("%d%% match • %s", match.Score, query)
	}

	group := manifest.AddonGroup()
	embed := &discordgo.MessageEmbed{
		Title:       manifest.Name,
		Color:       addonThemeColor,
		Description: description,
		Image:       &discordgo.MessageEmbedImage{URL: fmt.Sprintf(addonImageURL, id)},
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
	if group != "Easter Eggs" {
		embed.URL = fmt.Sprintf(addonSettingsURL, id)
	}

	if credits := addonCredits(manifest.Credits); credits != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Contributors", Value: credits, Inline: true})
	}

	versionAdded := manifest.VersionAdded
	if update := manifest.LatestUpdate; update != nil {
		version := update.Version
		if version == "" {
			version = "<unknown version>"
		}
		versionAdded += fmt.Sprintf(" (last updated in %s)", version)
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Group", Value: escapeMarkdown(group), Inline: true},
		&discordgo.MessageEmbedField{Name: "Version added", Value: escapeMarkdown(versionAdded), Inline: true},
	)
	return embed
}

func addonCredits(credits []services.AddonCredit) string {
	names := make([]string, 0, len(credits))
	for _, c := range credits {
		if c.Link != "" {
			names = append(names, fmt.Sprintf("[%s](%s)", escapeMarkdown(c.Name), c.Link))
		} else {
			names = append(names, escapeMarkdown(c.Name))
		}
	}
	return joinWithAnd(names)
}

// joinWithAnd joins a, b and c like so.
func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "~", `\~`, "`", "\\`", "|", `\|`, ">", `\>`, "[", `\[`, "]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
