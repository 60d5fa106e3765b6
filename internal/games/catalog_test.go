package games

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog(map[string][]string{
		"Counter-Strike 2":         {"cs2", "кс"},
		"God of War":               {"гов"},
		"Red Dead Redemption 2":    {"рдр"},
		"The Witcher 3: Wild Hunt": {"ведьмак"},
	})
}

func TestCatalog_Resolve(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "alias", query: "cs2", expected: "Counter-Strike 2"},
		{name: "alias case and spaces", query: "  Ведьмак ", expected: "The Witcher 3: Wild Hunt"},
		{name: "part of name", query: "witcher", expected: "The Witcher 3: Wild Hunt"},
		{name: "initials", query: "gow", expected: "God of War"},
		{name: "initials with number", query: "rdr2", expected: "Red Dead Redemption 2"},
		{name: "unknown passes through", query: "Hades", expected: "Hades"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Resolve(tt.query))
		})
	}
}

func TestCatalog_Matches(t *testing.T) {
	c := testCatalog()

	assert.True(t, c.Matches("god of war", "God of War"))
	assert.True(t, c.Matches("CS2", "Counter-Strike 2"))
	assert.False(t, c.Matches("Hades", "God of War"))
}

func TestAbbreviations(t *testing.T) {
	assert.Equal(t, []string{"god of war", "gow"}, Abbreviations("God of War"))
	assert.Equal(t, []string{"red dead redemption 2", "rdr2"}, Abbreviations("Red Dead Redemption 2"))
	assert.Nil(t, Abbreviations("!!!"))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(dir, "alias.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"God of War": ["gow4"]}`), 0o644))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, "God of War", c.Resolve("gow4"))
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(dir, "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("Hades:\n  - хейдс\n"), 0o644))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, "Hades", c.Resolve("хейдс"))
	})

	t.Run("missing file", func(t *testing.T) {
		c, err := LoadCatalog(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o644))

		_, err := LoadCatalog(path)
		assert.Error(t, err)
	})
}
