package pairing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blahbluh/internal/app/user"
)

func testUser(id string) user.User {
	return user.User{ID: id, Username: "User " + id}
}

func TestQueueEnqueueRejectsDuplicates(t *testing.T) {
	q := newWaitingQueue()
	now := time.Now()

	assert.True(t, q.enqueue(testUser("a"), now))
	assert.False(t, q.enqueue(testUser("a"), now))
	assert.Equal(t, 1, q.len())
}

func TestQueueEnqueueRefreshesLabel(t *testing.T) {
	q := newWaitingQueue()
	now := time.Now()

	q.enqueue(user.User{ID: "a", Username: "Dancing Penguin"}, now)
	assert.False(t, q.enqueue(user.User{ID: "a", Username: "Glowing Cactus"}, now.Add(time.Minute)))

	rng := rand.New(rand.NewSource(1))
	entry, ok := q.popRandom(rng)
	require.True(t, ok)
	assert.Equal(t, "Glowing Cactus", entry.User.Username)
	assert.Equal(t, now, entry.JoinedAt, "re-join must not reset the enqueue time")
}

func TestQueuePositionIsOneBased(t *testing.T) {
	q := newWaitingQueue()
	now := time.Now()

	q.enqueue(testUser("a"), now)
	q.enqueue(testUser("b"), now)
	q.enqueue(testUser("c"), now)

	assert.Equal(t, 1, q.position("a"))
	assert.Equal(t, 2, q.position("b"))
	assert.Equal(t, 3, q.position("c"))
	assert.Equal(t, 0, q.position("missing"))
}

func TestQueueRemovePreservesOrder(t *testing.T) {
	q := newWaitingQueue()
	now := time.Now()

	q.enqueue(testUser("a"), now)
	q.enqueue(testUser("b"), now)
	q.enqueue(testUser("c"), now)

	assert.True(t, q.remove("b"))
	assert.False(t, q.remove("b"))

	assert.Equal(t, 1, q.position("a"))
	assert.Equal(t, 2, q.position("c"))
	assert.Equal(t, 2, q.len())
}

func TestQueuePopRandomEmpty(t *testing.T) {
	q := newWaitingQueue()
	rng := rand.New(rand.NewSource(1))

	_, ok := q.popRandom(rng)
	assert.False(t, ok)
}

func TestQueuePopRandomDrains(t *testing.T) {
	q := newWaitingQueue()
	rng := rand.New(rand.NewSource(1))
	now := time.Now()

	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		q.enqueue(testUser(id), now)
	}

	seen := make(map[string]bool)
	for range ids {
		entry, ok := q.popRandom(rng)
		require.True(t, ok)
		assert.False(t, seen[entry.User.ID], "popped %s twice", entry.User.ID)
		seen[entry.User.ID] = true
	}

	assert.Equal(t, 0, q.len())
}

func TestQueuePopRandomDeterministicForSeed(t *testing.T) {
	now := time.Now()

	drain := func(seed int64) []string {
		q := newWaitingQueue()
		rng := rand.New(rand.NewSource(seed))
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			q.enqueue(testUser(id), now)
		}

		var order []string
		for q.len() > 0 {
			entry, _ := q.popRandom(rng)
			order = append(order, entry.User.ID)
		}
		return order
	}

	assert.Equal(t, drain(42), drain(42))
}

func TestQueuePurgeOffline(t *testing.T) {
	q := newWaitingQueue()
	now := time.Now()

	q.enqueue(testUser("online1"), now)
	q.enqueue(testUser("offline1"), now)
	q.enqueue(testUser("online2"), now)
	q.enqueue(testUser("offline2"), now)

	offline := func(userID string) bool {
		return userID == "offline1" || userID == "offline2"
	}

	assert.Equal(t, 2, q.purgeOffline(offline))
	assert.Equal(t, 2, q.len())
	assert.Equal(t, 1, q.position("online1"))
	assert.Equal(t, 2, q.position("online2"))

	// Second purge finds nothing.
	assert.Equal(t, 0, q.purgeOffline(offline))
}
