package handler

import (
	"strings"
	"unicode"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseCallbackData splits callback data into a key and a payload.
// Buttons are encoded as "\f<key>|<payload>"; when telebot already split
// the data, unique carries the key.
func parseCallbackData(unique, data string) (string, string) {
	if unique != "" {
		return unique, cleanCallbackData(data)
	}

	data = cleanCallbackData(data)
	key, payload, _ := strings.Cut(data, "|")
	return key, payload
}
