package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storefront/models"
)

func TestStateFeedDeliversToAllSubscribers(t *testing.T) {
	feed := NewStateFeed()
	a, unsubA := feed.Subscribe(1)
	b, unsubB := feed.Subscribe(1)
	defer unsubA()
	defer unsubB()

	feed.Publish(models.LoaderState{PageIndex: 3})

	assert.Equal(t, 3, (<-a).PageIndex)
	assert.Equal(t, 3, (<-b).PageIndex)
}

func TestStateFeedKeepsNewestWhenFull(t *testing.T) {
	feed := NewStateFeed()
	ch, unsub := feed.Subscribe(1)
	defer unsub()

	feed.Publish(models.LoaderState{PageIndex: 1})
	feed.Publish(models.LoaderState{PageIndex: 2})
	feed.Publish(models.LoaderState{PageIndex: 3})

	require.Len(t, ch, 1)
	assert.Equal(t, 3, (<-ch).PageIndex)
}

func TestStateFeedUnsubscribe(t *testing.T) {
	feed := NewStateFeed()
	ch, unsub := feed.Subscribe(1)
	assert.Equal(t, 1, feed.Subscribers())

	unsub()
	unsub()
	assert.Equal(t, 0, feed.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	feed.Publish(models.LoaderState{})
}

func TestStateFeedClose(t *testing.T) {
	feed := NewStateFeed()
	ch, unsub := feed.Subscribe(1)
	feed.Close()
	feed.Close()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	late, _ := feed.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}
