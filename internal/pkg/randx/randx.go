/*
Package randx provides functions for generating identifiers and random display names.

User and chat session identifiers are standard UUID v4 strings, message identifiers
are snowflake IDs, and display names are drawn from fixed adjective/noun word lists
using a cryptographically secure random source.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// adjectives is the pool of display-name prefixes.
var adjectives = []string{
	"Shearing", "Colliding", "Dancing", "Flying", "Jumping", "Spinning",
	"Glowing", "Bouncing", "Sliding", "Rolling", "Floating", "Zooming",
	"Giggling", "Sparkling", "Wobbling", "Drifting", "Blazing", "Twinkling",
	"Rushing", "Swirling",
}

// nouns is the pool of display-name suffixes.
var nouns = []string{
	"Chicken", "Banana", "Penguin", "Unicorn", "Dragon", "Butterfly",
	"Elephant", "Pineapple", "Octopus", "Flamingo", "Giraffe", "Koala",
	"Dolphin", "Cactus", "Rainbow", "Tornado", "Meteor", "Galaxy", "Phoenix",
	"Wizard",
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// UserID generates a standard UUID v4 string to serve as a unique user identifier.
func UserID() string {
	return uuid.New().String()
}

// SessionID generates a standard UUID v4 string to serve as a unique chat session identifier.
func SessionID() string {
	return uuid.New().String()
}

// ConnID generates a standard UUID v4 string to identify one transport connection.
func ConnID() string {
	return uuid.New().String()
}

// MessageID generates a snowflake ID string to serve as a unique chat message identifier.
// IDs are roughly time-ordered, which keeps message logs sortable without coordination.
func MessageID() string {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			// Node 1 is always within the valid node range; NewNode only
			// fails for out-of-range node numbers.
			panic(fmt.Sprintf("randx: snowflake node init failed: %v", err))
		}
		node = n
	})

	return node.Generate().String()
}

// DisplayName generates a random "Adjective Noun" display name for an anonymous user.
func DisplayName() (string, error) {
	adjIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(adjectives))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random index for display name: %v", err)
	}

	nounIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nouns))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random index for display name: %v", err)
	}

	return adjectives[adjIdx.Int64()] + " " + nouns[nounIdx.Int64()], nil
}
