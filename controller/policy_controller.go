// controller/policy_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/service"
	"github.com/dev-mohitbeniwal/themis/util"
)

type PolicyController struct {
	policyService service.IPolicyService
}

func NewPolicyController(policyService service.IPolicyService) *PolicyController {
	return &PolicyController{
		policyService: policyService,
	}
}

// RegisterRoutes registers the API routes
func (pc *PolicyController) RegisterRoutes(r *gin.RouterGroup) {
	policies := r.Group("/policies")
	{
		policies.GET("", pc.ListPolicies)
		policies.POST("", pc.CreatePolicy)
		policies.POST("/simple", pc.CreateSimplePolicy)
		policies.GET("/:name", pc.GetPolicy)
		policies.DELETE("/:name", pc.DeletePolicy)
	}
}

func (pc *PolicyController) CreatePolicy(c *gin.Context) {
	var policy model.Policy
	if err := util.BindJSON(c, &policy); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}

	createdPolicy, err := pc.policyService.CreatePolicy(c.Request.Context(), policy)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdPolicy)
}

// CreateSimplePolicy turns a check request into a one-rule allow policy
// named by the name query parameter.
func (pc *PolicyController) CreateSimplePolicy(c *gin.Context) {
	var req model.CheckRequest
	if err := util.BindJSON(c, &req); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}

	createdPolicy, err := pc.policyService.CreateSimplePolicy(c.Request.Context(), c.Query("name"), req)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdPolicy)
}

func (pc *PolicyController) GetPolicy(c *gin.Context) {
	policy, err := pc.policyService.GetPolicy(c.Request.Context(), c.Param("name"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (pc *PolicyController) ListPolicies(c *gin.Context) {
	policies, err := pc.policyService.ListPolicies(c.Request.Context())
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, policies)
}

// DeletePolicy answers with whether a policy was removed.
func (pc *PolicyController) DeletePolicy(c *gin.Context) {
	removed, err := pc.policyService.DeletePolicy(c.Request.Context(), c.Param("name"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}
