package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotificationCenterNotifyAndSubscribe(t *testing.T) {
	center := NewNotificationCenter(testLogger())

	events, cleanup := center.Subscribe()
	defer cleanup()

	id := center.Notify(Notification{
		Title:   "Deployment",
		Message: "New events published",
	})
	require.NotEmpty(t, id)

	select {
	case event := <-events:
		require.Equal(t, "posted", event.Kind)
		require.Equal(t, id, event.Notification.ID)
		require.Equal(t, NotificationInfo, event.Notification.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a posted event")
	}

	active := center.Active()
	require.Len(t, active, 1)
	require.Equal(t, id, active[0].ID)
}

func TestNotificationCenterDismiss(t *testing.T) {
	center := NewNotificationCenter(testLogger())

	events, cleanup := center.Subscribe()
	defer cleanup()

	id := center.Notify(Notification{Type: NotificationWarning, Title: "Cache degraded"})
	<-events

	center.Dismiss(id)
	select {
	case event := <-events:
		require.Equal(t, "dismissed", event.Kind)
		require.Equal(t, id, event.Notification.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a dismissed event")
	}
	require.Empty(t, center.Active())

	// Dismissing again is a harmless no-op.
	center.Dismiss(id)
	center.Dismiss("unknown")
	select {
	case event := <-events:
		t.Fatalf("unexpected event %q", event.Kind)
	default:
	}
}

func TestNotificationCenterAutoDismissal(t *testing.T) {
	center := NewNotificationCenter(testLogger())

	var fire func()
	center.afterFunc = func(d time.Duration, f func()) *time.Timer {
		require.Equal(t, 5*time.Second, d)
		fire = f
		return time.NewTimer(time.Hour)
	}

	id := center.Notify(Notification{
		Type:     NotificationSuccess,
		Title:    "Upload complete",
		Duration: 5 * time.Second,
	})
	require.Len(t, center.Active(), 1)
	require.NotNil(t, fire)

	fire()
	require.Empty(t, center.Active())
	_ = id
}

func TestNotificationCenterStickyWithoutDuration(t *testing.T) {
	center := NewNotificationCenter(testLogger())

	scheduled := false
	center.afterFunc = func(d time.Duration, f func()) *time.Timer {
		scheduled = true
		return time.NewTimer(time.Hour)
	}

	center.Notify(Notification{Type: NotificationError, Title: "Storage offline"})
	require.False(t, scheduled)
	require.Len(t, center.Active(), 1)
}

func TestNotificationCenterSlowSubscriberDoesNotBlock(t *testing.T) {
	center := NewNotificationCenter(testLogger())

	_, cleanup := center.Subscribe()
	defer cleanup()

	// Overflow the subscriber buffer; Notify must keep returning.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < notificationBufferSize*2; i++ {
			center.Notify(Notification{Title: "Bulk"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notify blocked on a slow subscriber")
	}
	require.Len(t, center.Active(), notificationBufferSize*2)
}
