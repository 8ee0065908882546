// controller/decision_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/service"
	"github.com/dev-mohitbeniwal/themis/util"
)

type DecisionController struct {
	decisionService service.IDecisionService
}

func NewDecisionController(decisionService service.IDecisionService) *DecisionController {
	return &DecisionController{decisionService: decisionService}
}

func (dc *DecisionController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/check", dc.Check)
	r.POST("/check/bulk", dc.BulkCheck)
}

func (dc *DecisionController) Check(c *gin.Context) {
	var req model.CheckRequest
	if err := util.BindJSON(c, &req); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}

	resp, err := dc.decisionService.Check(c.Request.Context(), req)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BulkCheck requires a JSON array. Items that fail to decode are passed on
// empty so they come back as SchemaViolation at their own index.
func (dc *DecisionController) BulkCheck(c *gin.Context) {
	var items []json.RawMessage
	if err := json.NewDecoder(c.Request.Body).Decode(&items); err != nil {
		util.RespondWithDomainError(c, util.SchemaError(err))
		return
	}
	if items == nil {
		util.RespondWithDomainError(c, util.SchemaError(errors.New("body must be a JSON array")))
		return
	}

	reqs := make([]model.CheckRequest, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &reqs[i]); err != nil {
			logger.Debug("Undecodable bulk item", zap.Int("index", i), zap.Error(err))
			reqs[i] = model.CheckRequest{}
		}
	}

	resp, err := dc.decisionService.BulkCheck(c.Request.Context(), reqs)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
