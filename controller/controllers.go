// controller/controllers.go
package controller

import (
	"github.com/dev-mohitbeniwal/themis/audit"
	"github.com/dev-mohitbeniwal/themis/service"
)

type Controllers struct {
	Health   *HealthController
	Decision *DecisionController
	Policy   *PolicyController
	Audit    *AuditController
}

func InitializeControllers(services *service.Services, auditService audit.Service) *Controllers {
	return &Controllers{
		Health:   &HealthController{},
		Decision: NewDecisionController(services.Decision),
		Policy:   NewPolicyController(services.Policy),
		Audit:    NewAuditController(auditService),
	}
}
