// test/mock/audit.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/themis/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogDecision(ctx context.Context, log audit.DecisionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditService) QueryDecisions(ctx context.Context, q audit.Query) ([]audit.DecisionLog, error) {
	args := m.Called(ctx, q)
	logs, _ := args.Get(0).([]audit.DecisionLog)
	return logs, args.Error(1)
}
