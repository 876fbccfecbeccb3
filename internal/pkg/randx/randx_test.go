package randx

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayNameDrawsFromWordLists(t *testing.T) {
	for i := 0; i < 50; i++ {
		name, err := DisplayName()
		require.NoError(t, err)

		parts := strings.SplitN(name, " ", 2)
		require.Len(t, parts, 2)
		assert.True(t, slices.Contains(adjectives, parts[0]), "unknown adjective %q", parts[0])
		assert.True(t, slices.Contains(nouns, parts[1]), "unknown noun %q", parts[1])
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		for _, id := range []string{UserID(), SessionID(), ConnID(), MessageID()} {
			require.NotEmpty(t, id)
			assert.False(t, seen[id], "duplicate id %q", id)
			seen[id] = true
		}
	}
}
