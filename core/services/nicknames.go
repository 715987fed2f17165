package services

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/unicode/norm"
)

// Discord's limit on nickname length, in characters.
const maxNicknameLength = 32

// A name is pingable when it has this many ASCII letters or digits in a row.
const pingableRun = 3

// normalizeNickname folds decorative Unicode (𝓐𝓵𝓲𝓬𝓮, ｆｕｌｌｗｉｄｔｈ) to plain
// text, drops leading symbols used to hoist a name to the top of the member
// list and collapses whitespace.
func normalizeNickname(name string) string {
	name = norm.NFKC.String(name)
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	name = strings.Join(strings.Fields(name), " ")
	if runes := []rune(name); len(runes) > maxNicknameLength {
		name = strings.TrimSpace(string(runes[:maxNicknameLength]))
	}
	return name
}

func isPingable(name string) bool {
	run := 0
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			run++
			if run >= pingableRun {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// nicknameFor returns the nickname member should have, and false when the
// current display name is fine or nothing better is available.
func nicknameFor(member *discordgo.Member) (string, bool) {
	current := member.Nick
	if current == "" {
		current = member.User.GlobalName
	}
	if current == "" {
		current = member.User.Username
	}
	nick := normalizeNickname(current)
	if !isPingable(nick) {
		nick = normalizeNickname(member.User.Username)
		if !isPingable(nick) {
			return "", false
		}
	}
	return nick, nick != current
}
