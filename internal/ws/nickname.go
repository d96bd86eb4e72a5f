package ws

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultNickname replaces names with too few usable runes.
const DefaultNickname = "Player"

const (
	minNickname = 2
	maxNickname = 12
)

// nicknameRune allows ASCII letters and digits, Cyrillic, underscore, dash and space.
func nicknameRune(r rune) bool {
	if r < utf8.RuneSelf {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == ' '
	}
	return unicode.Is(unicode.Cyrillic, r)
}

// SanitizeNickname drops disallowed runes, collapses runs of spaces and caps the length.
// The result is the key stats are stored under, so "Ana  Lee " and "Ana Lee" must agree.
func SanitizeNickname(raw string) string {
	if !utf8.ValidString(raw) {
		return DefaultNickname
	}
	kept := strings.Map(func(r rune) rune {
		if nicknameRune(r) {
			return r
		}
		return -1
	}, raw)
	name := []rune(strings.Join(strings.Fields(kept), " "))
	if len(name) > maxNickname {
		name = name[:maxNickname]
	}
	s := strings.TrimSpace(string(name))
	if utf8.RuneCountInString(s) < minNickname {
		return DefaultNickname
	}
	return s
}
