package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-navigator/geo"
	"campus-navigator/routing"
	"campus-navigator/services"
	"campus-navigator/utils"
)

type RoutingHandler struct {
	routingService *services.RoutingService
}

func NewRoutingHandler(routingService *services.RoutingService) *RoutingHandler {
	return &RoutingHandler{
		routingService: routingService,
	}
}

func (h *RoutingHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/route", h.CalculateRoute)
	router.GET("/api/route", h.CalculateRouteQuery)
	router.GET("/api/landmarks", h.GetLandmarks)
}

func (h *RoutingHandler) CalculateRoute(c *gin.Context) {
	log.Println("=== Received walking route request ===")

	var req routing.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("ERROR: Failed to parse request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, *req.Start, *req.End)
}

// CalculateRouteQuery serves GET /api/route?from=lon,lat&to=lon,lat.
func (h *RoutingHandler) CalculateRouteQuery(c *gin.Context) {
	from, err := utils.ParseCoordinate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := utils.ParseCoordinate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, from, to)
}

func (h *RoutingHandler) respond(c *gin.Context, start, end geo.Coordinate) {
	if !start.Valid() || !end.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}
	log.Printf("Request details: Start%s -> End%s", start, end)

	result := h.routingService.Route(start, end)
	resp := routing.PrepareResponse(result)
	if !resp.Found {
		log.Println("No walking route found")
	} else {
		log.Printf("Route found: %d segments, %s", resp.Segments, resp.Distance)
	}

	c.JSON(http.StatusOK, resp)
	log.Println("=== Walking route request completed ===")
}

func (h *RoutingHandler) GetLandmarks(c *gin.Context) {
	landmarks := h.routingService.Landmarks()
	c.JSON(http.StatusOK, gin.H{
		"landmarks": landmarks,
		"count":     len(landmarks),
	})
}
