package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"XPBot/core"
	"XPBot/core/database"
	"XPBot/core/dispatch"
	"XPBot/core/dispatch/handlers"
	"XPBot/core/leveling"
	"XPBot/core/services"

	"github.com/bwmarrin/discordgo"
)

// Variables used for command line parameters
var (
	settingsFile string
)

// bot holds everything the gateway handlers need.
type bot struct {
	activity *services.ActivityTracker
	members  *services.MemberEvents
}

func init() {
	flag.StringVar(&settingsFile, "c", "config-dev.json", "Configuration path")
	flag.Parse()
}

func main() {
	core.LoadSettings(settingsFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	db, err := database.Open(ctx, core.Settings.Database())
	if err != nil {
		core.LogFatal("error opening database, ", err)
		return
	}
	defer db.Close()

	// Create a new Discord session using the provided bot token.
	dg, err := discordgo.New("Bot " + core.Settings.AuthToken())
	if err != nil {
		core.LogFatal("error creating Discord session, ", err)
		return
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildInvites |
		discordgo.IntentsMessageContent

	b := newBot(ctx, dg, db)

	// Register handlers
	dg.AddHandler(b.messageCreate)
	dg.AddHandler(b.threadCreate)
	dg.AddHandler(b.guildMemberAdd)
	dg.AddHandler(b.guildMemberUpdate)
	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handlers.HandleSlashCommand(s, i)
	})

	// Open a websocket connection to Discord and begin listening.
	if err = dg.Open(); err != nil {
		core.LogFatal("error opening connection, ", err)
		return
	}
	defer dg.Close()

	// Register slash commands after connection is open
	handlers.RegisterSlashCommands(dg)

	// Wait here until CTRL-C or other term signal is received.
	core.LogInfoF("Bot is now running.  Press CTRL-C to exit.")
	<-ctx.Done()
}

func newBot(ctx context.Context, dg *discordgo.Session, db *database.DB) *bot {
	guildId := core.Settings.GuildId()
	channels := core.Settings.Channels()
	roles := core.Settings.Roles()
	resolver := services.NewResolver(dg, dg.State, guildId)
	botId := func() string { return dg.State.User.ID }

	var epic *services.RoleDesignations
	var designations leveling.Designations
	if roles.Epic != "" {
		epic = services.NewRoleDesignations(dg, resolver, guildId, roles.Epic)
		designations = epic
	} else {
		core.LogInfo("No epic role configured, top 1% promotion and invite rewards are disabled")
	}

	notifier := services.NewChannelNotifier(dg, channels.Bots, roles.Epic, core.Settings.AnnouncementsPerSecond())
	engine := leveling.NewEngine(db, notifier, designations)

	xp := handlers.NewXPCommands(engine, resolver)
	xp.Register(dispatch.Dispatcher)
	handlers.RegisterSlash(xp)

	suggestions := services.NewSuggestionChannel(dg, channels.Suggestions, roles.Developer, botId)
	handlers.RegisterSlash(handlers.NewSuggestionCommands(suggestions, resolver))

	addons := services.NewAddonCatalog(services.AddonIndexURL, services.AddonManifestURL)
	go func() {
		if err := addons.Load(ctx); err != nil {
			core.LogErrorF("Failed to load the addon index: %s", err)
		}
	}()
	handlers.RegisterSlash(handlers.NewAddonCommands(addons))

	return &bot{
		activity: services.NewActivityTracker(engine, resolver, guildId, botId),
		members:  services.NewMemberEvents(dg, db, resolver, epic, guildId, channels),
	}
}

// This function will be called (due to AddHandler above) every time a new
// message is created on any channel that the authenticated bot has access to.
func (b *bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	go dispatch.Dispatch(s, m.Message)
	b.activity.OnMessage(context.Background(), m.Message)
}

func (b *bot) threadCreate(s *discordgo.Session, t *discordgo.ThreadCreate) {
	b.activity.OnThreadCreate(context.Background(), t.Channel, t.NewlyCreated)
}

func (b *bot) guildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	guildName, memberCount := "the server", 0
	if guild, err := s.State.Guild(m.GuildID); err == nil {
		guildName, memberCount = guild.Name, guild.MemberCount
	}
	b.members.OnJoin(context.Background(), m.Member, guildName, memberCount)
}

func (b *bot) guildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	b.members.OnMemberUpdate(context.Background(), m.Member, m.BeforeUpdate)
}
