package subscription

import (
	"testing"
	"time"

	"github.com/VitaminP8/picstream/graph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionManager(t *testing.T) {
	t.Run("Subscriber receives published comment", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch, cancel := manager.Subscribe("post-1")
		defer cancel()

		comment := &model.Comment{Username: "alice", Text: "hello"}
		manager.Publish("post-1", comment)

		select {
		case received := <-ch:
			assert.Equal(t, comment, received)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for comment")
		}
	})

	t.Run("Publish reaches only subscribers of the same post", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch1, cancel1 := manager.Subscribe("post-1")
		defer cancel1()
		ch2, cancel2 := manager.Subscribe("post-2")
		defer cancel2()

		manager.Publish("post-1", &model.Comment{Username: "alice", Text: "hello"})

		select {
		case <-ch1:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for comment")
		}

		select {
		case comment := <-ch2:
			t.Fatalf("unexpected comment on another post: %v", comment)
		default:
		}
	})

	t.Run("Multiple subscribers all receive the comment", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch1, cancel1 := manager.Subscribe("post-1")
		defer cancel1()
		ch2, cancel2 := manager.Subscribe("post-1")
		defer cancel2()

		manager.Publish("post-1", &model.Comment{Username: "alice", Text: "hello"})

		for _, ch := range []<-chan *model.Comment{ch1, ch2} {
			select {
			case received := <-ch:
				require.NotNil(t, received)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for comment")
			}
		}
	})

	t.Run("Cancel closes channel and stops delivery", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch, cancel := manager.Subscribe("post-1")
		cancel()

		_, open := <-ch
		assert.False(t, open)

		// публикация после отписки не паникует
		manager.Publish("post-1", &model.Comment{Username: "alice", Text: "hello"})
	})

	t.Run("Publish without subscribers is a no-op", func(t *testing.T) {
		manager := NewSubscriptionManager()
		manager.Publish("post-1", &model.Comment{Username: "alice", Text: "hello"})
	})
}
