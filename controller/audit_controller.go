// controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/themis/audit"
	"github.com/dev-mohitbeniwal/themis/util"
	helper_util "github.com/dev-mohitbeniwal/themis/util/helper"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit/decisions", ac.QueryDecisions)
}

// QueryDecisions filters the audit trail by from/to (RFC3339), principal,
// resource and limit.
func (ac *AuditController) QueryDecisions(c *gin.Context) {
	from, err := helper_util.GetTimeParam(c, "from", time.Time{})
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	to, err := helper_util.GetTimeParam(c, "to", time.Time{})
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	limit, err := helper_util.GetIntParam(c, "limit", audit.DefaultQueryLimit)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}

	logs, err := ac.auditService.QueryDecisions(c.Request.Context(), audit.Query{
		From:         from,
		To:           to,
		PrincipalURI: c.Query("principal"),
		ResourceURI:  c.Query("resource"),
		Limit:        limit,
	})
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
