package services

import (
	"context"
	"fmt"
	"time"

	"XPBot/core"
	"XPBot/core/leveling"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const levelUpFooter = "View the leaderboard with /xp top • View someone’s XP with /xp rank"

// ChannelNotifier posts leveling announcements into guild channels.
type ChannelNotifier struct {
	api      DiscordAPI
	channels map[leveling.Channel]string
	epicRole string
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewChannelNotifier posts level-ups and epic announcements to botsChannel,
// at most perSecond messages per second.
func NewChannelNotifier(api DiscordAPI, botsChannel, epicRole string, perSecond float64) *ChannelNotifier {
	return &ChannelNotifier{
		api: api,
		channels: map[leveling.Channel]string{
			leveling.ChannelLevelUp:          botsChannel,
			leveling.ChannelEpicAnnouncement: botsChannel,
		},
		epicRole: epicRole,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		now:      time.Now,
	}
}

func (n *ChannelNotifier) Notify(ctx context.Context, a leveling.Announcement) error {
	channelId := n.channels[a.Channel]
	if channelId == "" {
		core.LogDebugF("No channel configured for %s announcements", a.Channel)
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	var err error
	switch a.Channel {
	case leveling.ChannelLevelUp:
		_, err = n.api.ChannelMessageSendComplex(channelId, levelUpMessage(a, n.now()), discordgo.WithContext(ctx))
	case leveling.ChannelEpicAnnouncement:
		_, err = n.api.ChannelMessageSend(channelId, epicMessage(a.Recipient, n.epicRole), discordgo.WithContext(ctx))
	default:
		return fmt.Errorf("unknown announcement channel %q", a.Channel)
	}
	return err
}

func levelUpMessage(a leveling.Announcement, now time.Time) *discordgo.MessageSend {
	p := a.Progress
	verb := " has reached"
	if now.UTC().Month() == time.April && now.UTC().Day() == 1 {
		verb = ", You've at"
	}
	description := fmt.Sprintf("%s**%s level %d!** (%s/%s XP)\nNext level: %s/%s XP remaining",
		a.Recipient.Mention(), verb, p.Level,
		core.FormatNumber(p.XP), core.FormatNumber(p.LevelXP),
		core.FormatNumber(p.Remaining()), core.FormatNumber(p.NextLevelXP))

	return &discordgo.MessageSend{
		Content: "🎉 " + a.Recipient.Mention(),
		Embeds: []*discordgo.MessageEmbed{{
			Color: a.Recipient.Color,
			Author: &discordgo.MessageEmbedAuthor{
				Name:    a.Recipient.Name(),
				IconURL: a.Recipient.AvatarURL,
			},
			Title:       "A member leveled up!",
			Description: description,
			Footer:      &discordgo.MessageEmbedFooter{Text: levelUpFooter},
		}},
	}
}

func epicMessage(r leveling.Recipient, epicRole string) string {
	return fmt.Sprintf("🎊 %s Congratulations on being in the top 1%% of the leaderboard! You have earned <@&%s>.",
		r.Mention(), epicRole)
}
