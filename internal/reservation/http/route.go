package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")

	// === Authenticated Routes ===
	// Role checks (admin for decisions/edits/report, owner-or-admin for
	// cancel) live in the service so it can answer with Forbidden.
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/mine", h.Mine)
		group.GET("/busy", h.Busy)
		group.GET("/report", h.Report)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/approve", h.Approve)
		group.POST("/:id/reject", h.Reject)
	}
}
