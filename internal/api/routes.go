package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rakasetyo/cvrptw-planner/internal/common/realtime"
)

// SetupSolveRoutes wires the solve submission, lookup, listing, and
// WebSocket progress endpoints under the given router group.
func SetupSolveRoutes(rg *gin.RouterGroup, handler *SolveHandler, hub *realtime.WebSocketHub) {
	solves := rg.Group("/solves")
	{
		solves.POST("", handler.CreateSolve)
		solves.GET("", handler.ListSolves)
		solves.GET("/:id", handler.GetSolve)
		if hub != nil {
			solves.GET("/:id/ws", hub.HandleWebSocket)
		}
	}
}
