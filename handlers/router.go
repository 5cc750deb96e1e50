package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"campus-navigator/services"
)

// NewRouter wires every endpoint onto a gin engine with permissive CORS for the map
// front end.
func NewRouter(rs *services.RoutingService, ss *services.SessionService) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		nodes, edges := rs.GraphStats()
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"nodes":    nodes,
			"edges":    edges,
			"sessions": ss.Count(),
		})
	})

	NewRoutingHandler(rs).RegisterRoutes(r)
	NewSessionHandler(ss).RegisterRoutes(r)
	return r
}
