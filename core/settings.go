package core

import (
	"encoding/json"
	"os"

	"github.com/jcelliott/lumber"
	"github.com/joho/godotenv"
)

const (
	defaultCommandPrefix          = "!"
	defaultXpPerMessage           = 5
	defaultXpPerThread            = 5
	defaultInviteRewardThreshold  = 20
	defaultAnnouncementsPerSecond = 1.0
)

// Channel IDs the bot posts into.
type ChannelConfig struct {
	Bots        string // Level-up and top 1% announcements
	General     string // Invite reward thank-yous
	Welcome     string // Join greetings
	Info        string // Renamed to show the member count
	Suggestions string // Suggestion threads
}

// Role IDs the bot manages.
type RoleConfig struct {
	Epic      string
	Developer string // Allowed to answer suggestions; empty lets anyone answer
}

type jsonData struct {
	Development            bool
	AuthToken              string
	CommandPrefix          string
	Database               string
	GuildId                string
	OwnerIds               []string
	Channels               ChannelConfig
	Roles                  RoleConfig
	XpPerMessage           int64
	XpPerThread            int64
	InviteRewardThreshold  int
	InviteIgnoreIds        []string
	AnnouncementsPerSecond float64
}

type SettingsStorage struct {
	data jsonData
}

var Settings = SettingsStorage{jsonData{}}

// Load the settings from a json file and stuff it into the global SettingsStorage.
// DISCORD_TOKEN and DATABASE_PATH from the environment (or a .env file) take
// precedence over the file.
func LoadSettings(settingsfile string) {
	file, err := os.Open(settingsfile)
	if err != nil {
		LogFatal("Failed to open config file: ", err)
	}
	defer file.Close()
	if err = Settings.decode(file); err != nil {
		LogFatal("Failed to parse configuration: ", err)
	}

	if err = godotenv.Load(); err == nil {
		LogDebug("Loaded environment overrides from .env")
	}
	Settings.applyEnv()

	if !Settings.IsDevelopment() {
		SetLogLevel(lumber.INFO)
	} else {
		LogDebug("Loaded config successfully from ", settingsfile)
	}
}

func (s *SettingsStorage) decode(file *os.File) error {
	data := jsonData{}
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *SettingsStorage) applyEnv() {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		s.data.AuthToken = token
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		s.data.Database = path
	}
}

// Get the bot auth token
func (s *SettingsStorage) AuthToken() string {
	return s.data.AuthToken
}

// Get the prefix used for bot commands
func (s *SettingsStorage) CommandPrefix() string {
	if s.data.CommandPrefix == "" {
		return defaultCommandPrefix
	}
	return s.data.CommandPrefix
}

// Get whether or not we're running in Development mode.
func (s *SettingsStorage) IsDevelopment() bool {
	return s.data.Development
}

// Path to the sqlite database file
func (s *SettingsStorage) Database() string {
	return s.data.Database
}

// The one guild this bot serves. Events from other guilds are ignored.
func (s *SettingsStorage) GuildId() string {
	return s.data.GuildId
}

func (s *SettingsStorage) IsOwner(userId string) bool {
	for _, id := range s.data.OwnerIds {
		if id == userId {
			return true
		}
	}
	return false
}

func (s *SettingsStorage) Channels() ChannelConfig {
	return s.data.Channels
}

func (s *SettingsStorage) Roles() RoleConfig {
	return s.data.Roles
}

// XP granted for a regular guild message
func (s *SettingsStorage) XpPerMessage() int64 {
	if s.data.XpPerMessage <= 0 {
		return defaultXpPerMessage
	}
	return s.data.XpPerMessage
}

// XP granted to the owner of a new thread
func (s *SettingsStorage) XpPerThread() int64 {
	if s.data.XpPerThread <= 0 {
		return defaultXpPerThread
	}
	return s.data.XpPerThread
}

// Number of invite uses that earns the inviter the epic role
func (s *SettingsStorage) InviteRewardThreshold() int {
	if s.data.InviteRewardThreshold <= 0 {
		return defaultInviteRewardThreshold
	}
	return s.data.InviteRewardThreshold
}

func (s *SettingsStorage) IsInviteIgnored(userId string) bool {
	for _, id := range s.data.InviteIgnoreIds {
		if id == userId {
			return true
		}
	}
	return false
}

// Maximum rate of announcement messages the bot sends
func (s *SettingsStorage) AnnouncementsPerSecond() float64 {
	if s.data.AnnouncementsPerSecond <= 0 {
		return defaultAnnouncementsPerSecond
	}
	return s.data.AnnouncementsPerSecond
}
