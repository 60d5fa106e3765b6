package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "view_accounts|2",
			expected: "view_accounts|2",
		},
		{
			name:     "string with whitespace",
			input:    "  back_to_menu  ",
			expected: "back_to_menu",
		},
		{
			name:     "button prefix",
			input:    "\fstart_edit|bob",
			expected: "start_edit|bob",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "flow\x00|save\x01",
			expected: "flow|save",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name        string
		unique      string
		data        string
		wantKey     string
		wantPayload string
	}{
		{
			name:    "key only",
			data:    "\fback_to_menu",
			wantKey: "back_to_menu",
		},
		{
			name:        "key and payload",
			data:        "\fview_requests|3",
			wantKey:     "view_requests",
			wantPayload: "3",
		},
		{
			name:        "payload keeps later separators",
			data:        "\fstart_edit|we|ird",
			wantKey:     "start_edit",
			wantPayload: "we|ird",
		},
		{
			name:        "already split by telebot",
			unique:      "flow",
			data:        "save",
			wantKey:     "flow",
			wantPayload: "save",
		},
		{
			name:    "plain data",
			data:    "current_page",
			wantKey: "current_page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, payload := parseCallbackData(tt.unique, tt.data)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantPayload, payload)
		})
	}
}
