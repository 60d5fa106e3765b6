package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "two games",
			input:    "GameA\nGameB",
			expected: []string{"GameA", "GameB"},
		},
		{
			name:     "blank lines and spaces",
			input:    "  GameA \n\n\t\nGameB\n",
			expected: []string{"GameA", "GameB"},
		},
		{
			name:     "empty",
			input:    " \n ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseGames(tt.input))
		})
	}
}

func TestAccount_SameLogin(t *testing.T) {
	acc := Account{Login: "Bob"}

	assert.True(t, acc.SameLogin("bob"))
	assert.True(t, acc.SameLogin(" BOB "))
	assert.False(t, acc.SameLogin("bobby"))
}

func TestAccount_EditableBy(t *testing.T) {
	acc := Account{Login: "bob", AddedBy: 42}

	assert.True(t, acc.EditableBy(42, false))
	assert.True(t, acc.EditableBy(7, true))
	assert.False(t, acc.EditableBy(7, false))
}

func TestDraft_CloneIsDeep(t *testing.T) {
	d := Draft{Login: "bob", Games: []string{"GameA"}}
	c := d.Clone()
	c.Games[0] = "changed"

	assert.Equal(t, "GameA", d.Games[0])
}

func TestDraftFromAccount(t *testing.T) {
	acc := Account{Login: "bob", Secret: "s", Games: []string{"GameA"}, AddedBy: 1}
	d := DraftFromAccount(acc)

	assert.Equal(t, "bob", d.Target)
	assert.Equal(t, acc, d.Account())
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "none", Step{}.String())
	assert.Equal(t, "add/awaiting_login", Step{Flow: FlowAdd, Kind: StepAwaitingLogin}.String())
	assert.Equal(t, "add/awaiting_extra(games)", Step{Flow: FlowAdd, Kind: StepAwaitingExtra, Extra: ExtraGames}.String())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	tests := []struct {
		name          string
		page          int
		expectedItems []int
		expectedPage  int
		expectedTotal int
	}{
		{name: "first page", page: 1, expectedItems: []int{1, 2, 3, 4, 5}, expectedPage: 1, expectedTotal: 3},
		{name: "last partial page", page: 3, expectedItems: []int{11, 12}, expectedPage: 3, expectedTotal: 3},
		{name: "clamped high", page: 9, expectedItems: []int{11, 12}, expectedPage: 3, expectedTotal: 3},
		{name: "clamped low", page: -4, expectedItems: []int{1, 2, 3, 4, 5}, expectedPage: 1, expectedTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, 5)
			assert.Equal(t, tt.expectedItems, p.Items)
			assert.Equal(t, tt.expectedPage, p.Number)
			assert.Equal(t, tt.expectedTotal, p.Total)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]string{}, 1, 5)

	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.Total)
}
