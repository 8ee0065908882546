package util

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationServiceForwardsPolicyEvents(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	n := NewNotificationService()
	n.notified = func(changeType, name string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, changeType+" "+name)
	}

	bus := NewEventBus()
	n.Subscribe(bus)
	bus.Publish(context.Background(), EventPolicyCreated, "admin-access")
	bus.Publish(context.Background(), EventPolicyDeleted, "admin-access")
	bus.Publish(context.Background(), EventDecisionEvaluated, "ignored")
	bus.Wait()

	assert.ElementsMatch(t, []string{"policy.created admin-access", "policy.deleted admin-access"}, got)
}

func TestNotifyPolicyChangeRejectsUnknownType(t *testing.T) {
	err := NewNotificationService().NotifyPolicyChange(context.Background(), "policy.renamed", "p")
	assert.Error(t, err)
}
