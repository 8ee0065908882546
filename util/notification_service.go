// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/themis/logging"
)

// NotificationService announces policy set changes. Delivery is a log line
// for now; handlers run on the event bus, off the request path.
type NotificationService struct {
	notified func(changeType, policyName string)
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyPolicyChange(ctx context.Context, changeType string, policyName string) error {
	switch changeType {
	case EventPolicyCreated:
		logger.Info("NOTIFICATION: New policy created", zap.String("policyName", policyName))
	case EventPolicyDeleted:
		logger.Info("NOTIFICATION: Policy deleted", zap.String("policyName", policyName))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	if n.notified != nil {
		n.notified(changeType, policyName)
	}
	return nil
}

// Subscribe forwards policy create and delete events from bus.
func (n *NotificationService) Subscribe(bus *EventBus) {
	handler := func(ctx context.Context, event Event) error {
		name, ok := event.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected policy payload %T", event.Payload)
		}
		return n.NotifyPolicyChange(ctx, event.Type, name)
	}
	bus.Subscribe(EventPolicyCreated, handler)
	bus.Subscribe(EventPolicyDeleted, handler)
}
