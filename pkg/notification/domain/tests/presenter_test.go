package tests

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos/pkg/notification/domain/model"
	"pos/pkg/notification/domain/service"
)

func TestShowAndExpiry(t *testing.T) {
	presenter := service.NewPresenter(nil)
	defer presenter.Close()

	presenter.Show("Added to cart", 3, 10*time.Millisecond)

	current := presenter.Current()
	require.NotNil(t, current)
	assert.Equal(t, "Added to cart", current.Message)
	assert.Equal(t, 3, current.ItemCount)

	require.Eventually(t, func() bool {
		return presenter.Current() == nil
	}, time.Second, time.Millisecond)
}

func TestLastWriterWins(t *testing.T) {
	presenter := service.NewPresenter(nil)
	defer presenter.Close()

	presenter.Show("first", 1, 10*time.Millisecond)
	presenter.Show("second", 2, time.Minute)

	// The first notification's countdown must not hide the second.
	time.Sleep(30 * time.Millisecond)

	current := presenter.Current()
	require.NotNil(t, current)
	assert.Equal(t, "second", current.Message)
}

func TestDismiss(t *testing.T) {
	presenter := service.NewPresenter(nil)
	defer presenter.Close()

	presenter.Show("visible", 1, time.Minute)
	presenter.Dismiss()

	assert.Nil(t, presenter.Current())

	t.Run("Dismiss on empty display is a no-op", func(t *testing.T) {
		presenter.Dismiss()
		assert.Nil(t, presenter.Current())
	})
}

func TestObserverSeesShowAndHide(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []*model.Notification
	)
	presenter := service.NewPresenter(func(n *model.Notification) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
	})
	defer presenter.Close()

	presenter.Show("hello", 1, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, seen[0])
	assert.Equal(t, "hello", seen[0].Message)
	assert.Nil(t, seen[1], "expiry reports an empty display")
}

func TestClosedPresenterStaysSilent(t *testing.T) {
	presenter := service.NewPresenter(nil)
	presenter.Show("pending", 1, time.Minute)
	presenter.Close()

	assert.Nil(t, presenter.Current())

	presenter.Show("after close", 1, time.Minute)
	assert.Nil(t, presenter.Current())
}

func TestRemaining(t *testing.T) {
	shownAt := time.Now()
	n := &model.Notification{Message: "x", Duration: 100 * time.Millisecond, ShownAt: shownAt}

	assert.Equal(t, 100*time.Millisecond, n.Remaining(shownAt))
	assert.Equal(t, 40*time.Millisecond, n.Remaining(shownAt.Add(60*time.Millisecond)))
	assert.Equal(t, time.Duration(0), n.Remaining(shownAt.Add(time.Second)))
	assert.Equal(t, 100*time.Millisecond, n.Remaining(shownAt.Add(-time.Second)), "clock skew clips to full duration")
}
