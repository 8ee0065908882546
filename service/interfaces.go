// service/interfaces.go
package service

//go:generate mockgen -source=interfaces.go -destination=../test/service_mock/mock_service.go -package=mock_service

import (
	"context"

	"github.com/dev-mohitbeniwal/themis/model"
)

type IAttributeResolver interface {
	Resolve(ctx context.Context, ref *model.EntityRef) (model.Attributes, error)
}

type IDecisionService interface {
	Check(ctx context.Context, req model.CheckRequest) (*model.CheckResponse, error)
	BulkCheck(ctx context.Context, reqs []model.CheckRequest) ([]model.CheckResponse, error)
}

type IPolicyService interface {
	CreatePolicy(ctx context.Context, policy model.Policy) (*model.Policy, error)
	CreateSimplePolicy(ctx context.Context, name string, req model.CheckRequest) (*model.Policy, error)
	GetPolicy(ctx context.Context, name string) (*model.Policy, error)
	ListPolicies(ctx context.Context) ([]*model.Policy, error)
	DeletePolicy(ctx context.Context, name string) (bool, error)
}
