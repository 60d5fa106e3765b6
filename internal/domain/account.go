package domain

import "strings"

// Account represents a stored platform account
type Account struct {
	Login   string   `json:"login" db:"login"`
	Secret  string   `json:"pass" db:"secret"`
	Games   []string `json:"games"`
	AddedBy int64    `json:"addedBy" db:"added_by"`
}

// SameLogin reports whether login refers to this account, ignoring case
func (a Account) SameLogin(login string) bool {
	return strings.EqualFold(a.Login, strings.TrimSpace(login))
}

// EditableBy reports whether the user may change or delete the account
func (a Account) EditableBy(userID int64, admin bool) bool {
	return admin || a.AddedBy == userID
}

// ParseGames splits a multi-line games list, dropping blank lines
func ParseGames(text string) []string {
	var games []string
	for _, line := range strings.Split(text, "\n") {
		if game := strings.TrimSpace(line); game != "" {
			games = append(games, game)
		}
	}
	return games
}
