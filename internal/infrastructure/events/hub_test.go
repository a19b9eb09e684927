package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub(zap.NewNop())
	userID := uuid.New()

	ch1, cancel1 := hub.Subscribe(userID)
	ch2, cancel2 := hub.Subscribe(userID)
	defer cancel1()
	defer cancel2()

	assert.Equal(t, 2, hub.SubscriberCount(userID))

	taskID := uuid.New()
	hub.Publish(userID, Event{Type: TaskCreated, TaskID: taskID})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, TaskCreated, ev.Type)
			assert.Equal(t, taskID, ev.TaskID)
			assert.False(t, ev.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("expected event was not delivered")
		}
	}
}

func TestHubUserScoping(t *testing.T) {
	hub := NewHub(zap.NewNop())
	userA := uuid.New()
	userB := uuid.New()

	chA, cancelA := hub.Subscribe(userA)
	defer cancelA()

	hub.Publish(userB, Event{Type: TaskUpdated, TaskID: uuid.New()})

	select {
	case ev := <-chA:
		t.Fatalf("user A received user B's event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(zap.NewNop())
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	cancel()
	cancel() // second call must be a no-op

	assert.Equal(t, 0, hub.SubscriberCount(userID))

	// Publishing after deregistration must not panic or deliver
	hub.Publish(userID, Event{Type: TaskDeleted, TaskID: uuid.New()})

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	defer cancel()

	// Overfill the buffer; none of these sends may block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(userID, Event{Type: TaskCreated, TaskID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber queue")
	}

	assert.Len(t, ch, subscriberBuffer)
}
