package chat

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blahbluh/internal/pkg/metrics"
)

func newTestHub() *Hub {
	return NewHub(metrics.New(prometheus.NewRegistry()))
}

// receive drains one queued frame from the client, or fails the test.
func receive(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case data := <-c.send:
		var envelope Envelope
		require.NoError(t, json.Unmarshal(data, &envelope))
		return envelope
	default:
		t.Fatal("no frame queued on client")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case data, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame queued: %s", data)
		}
	default:
	}
}

func TestHubSendDeliversToConnection(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, nil)
	h.Register(c)

	h.Send(c.connID, "chat-paired", map[string]string{"chatId": "s1"})

	envelope := receive(t, c)
	assert.Equal(t, "chat-paired", envelope.Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "s1", payload["chatId"])
}

func TestHubSendUnknownConnectionIsDropped(t *testing.T) {
	h := newTestHub()

	// Must not panic.
	h.Send("no-such-conn", "chat-paired", nil)
}

func TestHubBroadcastSessionReachesGroupOnly(t *testing.T) {
	h := newTestHub()

	inGroup1 := NewClient(h, nil, nil)
	inGroup2 := NewClient(h, nil, nil)
	outsider := NewClient(h, nil, nil)

	for _, c := range []*Client{inGroup1, inGroup2, outsider} {
		h.Register(c)
	}
	h.JoinGroup("s1", inGroup1)
	h.JoinGroup("s1", inGroup2)
	h.JoinGroup("s2", outsider)

	h.BroadcastSession("s1", EventNewMessage, MessagePayload{ID: "m1", Message: "hi"})

	assert.Equal(t, EventNewMessage, receive(t, inGroup1).Type)
	assert.Equal(t, EventNewMessage, receive(t, inGroup2).Type)
	assertNoFrame(t, outsider)
}

func TestHubBroadcastUnknownSessionReachesNobody(t *testing.T) {
	h := newTestHub()

	c := NewClient(h, nil, nil)
	h.Register(c)

	h.BroadcastSession("never-created", EventNewMessage, MessagePayload{ID: "m1"})
	assertNoFrame(t, c)
}

func TestHubUnregisterLeavesGroups(t *testing.T) {
	h := newTestHub()

	leaving := NewClient(h, nil, nil)
	staying := NewClient(h, nil, nil)
	h.Register(leaving)
	h.Register(staying)
	h.JoinGroup("s1", leaving)
	h.JoinGroup("s1", staying)

	h.Unregister(leaving)

	h.BroadcastSession("s1", EventNewMessage, MessagePayload{ID: "m1"})
	assert.Equal(t, EventNewMessage, receive(t, staying).Type)

	// The departed client's channel is closed and it got nothing.
	_, ok := <-leaving.send
	assert.False(t, ok)
}

func TestHubQueueAfterUnregisterIsSafe(t *testing.T) {
	h := newTestHub()

	c := NewClient(h, nil, nil)
	h.Register(c)
	h.Unregister(c)

	// A late fan-out racing the disconnect must not panic on the closed channel.
	c.queue([]byte(`{"type":"new-message"}`))
}

func TestHubJoinGroupUnknownClientIgnored(t *testing.T) {
	h := newTestHub()

	c := NewClient(h, nil, nil)
	// Never registered.
	h.JoinGroup("s1", c)

	h.BroadcastSession("s1", EventNewMessage, MessagePayload{ID: "m1"})
	assertNoFrame(t, c)
}

func TestHubShutdownClosesAllClients(t *testing.T) {
	h := newTestHub()

	a := NewClient(h, nil, nil)
	b := NewClient(h, nil, nil)
	h.Register(a)
	h.Register(b)

	h.Shutdown()

	for _, c := range []*Client{a, b} {
		_, ok := <-c.send
		assert.False(t, ok)
	}
}
