package registry

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/util"
	helper_util "github.com/dev-mohitbeniwal/themis/util/helper"
)

// Controller exposes registry CRUD under /fetchers/registry.
type Controller struct {
	registry *Registry
}

func NewController(registry *Registry) *Controller {
	return &Controller{registry: registry}
}

// RegisterRoutes registers the entity routes
func (rc *Controller) RegisterRoutes(r *gin.RouterGroup) {
	entities := r.Group("/entities")
	{
		entities.GET("", rc.ListEntities)
		entities.GET("/$count", rc.CountEntities)
		entities.POST("", rc.RegisterEntity)
		entities.GET("/:uri", rc.GetEntity)
		entities.PUT("/:uri", rc.UpdateEntity)
		entities.DELETE("/:uri", rc.DeleteEntity)
	}
}

func (rc *Controller) ListEntities(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	entities, err := rc.registry.List(c.Request.Context(), offset, limit)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entities)
}

func (rc *Controller) CountEntities(c *gin.Context) {
	count, err := rc.registry.Count(c.Request.Context())
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (rc *Controller) RegisterEntity(c *gin.Context) {
	var in model.EntityCreate
	if err := util.BindJSON(c, &in); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	entity, err := rc.registry.Register(c.Request.Context(), in)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity)
}

func (rc *Controller) GetEntity(c *gin.Context) {
	entity, err := rc.registry.Get(c.Request.Context(), c.Param("uri"))
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (rc *Controller) UpdateEntity(c *gin.Context) {
	override, err := helper_util.GetBoolParam(c, "override", false)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	var in model.EntityUpdate
	if err := util.BindJSON(c, &in); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	entity, err := rc.registry.Update(c.Request.Context(), c.Param("uri"), in, override)
	if err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (rc *Controller) DeleteEntity(c *gin.Context) {
	if err := rc.registry.Delete(c.Request.Context(), c.Param("uri")); err != nil {
		util.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
