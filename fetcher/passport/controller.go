package passport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/util"
)

type Controller struct {
	passport *Passport
}

func NewController(p *Passport) *Controller {
	return &Controller{passport: p}
}

// RegisterRoutes registers the passport routes
func (pc *Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/issue", pc.IssuePassport)
}

func (pc *Controller) IssuePassport(c *gin.Context) {
	var req model.PassportIssueRequest
	if err := util.BindJSON(c, &req); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	resp, err := pc.passport.Issue(c.Request.Context(), req.URI, req.Attributes, req.TTL)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
