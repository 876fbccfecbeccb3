package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryNeverSeenUserIsOffline(t *testing.T) {
	r := newConnRegistry()

	assert.True(t, r.isOffline("ghost"))
	assert.Nil(t, r.connections("ghost"))
}

func TestRegistryAttachDetach(t *testing.T) {
	r := newConnRegistry()

	r.attach("u1", "c1")
	assert.False(t, r.isOffline("u1"))
	assert.Equal(t, 1, r.connectionCount())

	r.attach("u1", "c2")
	assert.ElementsMatch(t, []string{"c1", "c2"}, r.connections("u1"))
	assert.Equal(t, 2, r.connectionCount())

	assert.False(t, r.detach("u1", "c1"))
	assert.False(t, r.isOffline("u1"))

	assert.True(t, r.detach("u1", "c2"))
	assert.True(t, r.isOffline("u1"))
	assert.Equal(t, 0, r.connectionCount())
}

func TestRegistryAttachIdempotent(t *testing.T) {
	r := newConnRegistry()

	r.attach("u1", "c1")
	r.attach("u1", "c1")

	assert.Equal(t, 1, r.connectionCount())
	assert.Equal(t, []string{"c1"}, r.connections("u1"))
}

func TestRegistryDetachUnknown(t *testing.T) {
	r := newConnRegistry()

	// Detaching a never-attached connection must not panic and reports the
	// user as fully offline.
	assert.True(t, r.detach("ghost", "c1"))

	r.attach("u1", "c1")
	assert.False(t, r.detach("u1", "unrelated"))
	assert.False(t, r.isOffline("u1"))
}

func TestRegistryEmptyEntryIsRemoved(t *testing.T) {
	r := newConnRegistry()

	r.attach("u1", "c1")
	r.detach("u1", "c1")

	// Policy A: the entry disappears with its last connection, so the user is
	// indistinguishable from one never seen.
	_, exists := r.conns["u1"]
	assert.False(t, exists)
	assert.True(t, r.isOffline("u1"))
}
