package v1

import "github.com/gin-gonic/gin"

// AdminRouteHandler defines the interface for admin list handlers.
type AdminRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// OrderedRouteHandler is implemented by handlers of entities with a display order.
type OrderedRouteHandler interface {
	MoveUp(c *gin.Context)
	MoveDown(c *gin.Context)
}

// RegisterAdminRoutes registers standard CRUD routes for an admin list.
// If the handler also implements OrderedRouteHandler, the reorder routes are registered too.
func RegisterAdminRoutes(group *gin.RouterGroup, handler AdminRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)

	if ordered, ok := handler.(OrderedRouteHandler); ok {
		group.POST("/:id/move-up", ordered.MoveUp)
		group.POST("/:id/move-down", ordered.MoveDown)
	}
}
