package services

import (
	"errors"
	"fmt"
	"log"
	"os"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/preprocessing"
	"campus-navigator/routing"
)

// RoutingService owns the path graph and landmarks loaded at startup.
type RoutingService struct {
	graph     *routing.Graph
	router    *routing.Router
	landmarks []models.Landmark
}

func NewRoutingService(g *routing.Graph, landmarks []models.Landmark, maxExpansions int) *RoutingService {
	return &RoutingService{
		graph:     g,
		router:    routing.NewRouter(g, maxExpansions),
		landmarks: landmarks,
	}
}

// LoadRoutingService reads the network (through the gob cache) and landmarks named in
// cfg. A missing landmarks file is not fatal: guidance then runs without them.
func LoadRoutingService(cfg *config.Config) (*RoutingService, error) {
	g, err := preprocessing.LoadOrBuildGraph(cfg.Data.NetworkPath, cfg.Data.GraphCache)
	if err != nil {
		return nil, fmt.Errorf("failed to load path network: %w", err)
	}

	landmarks, err := preprocessing.LoadLandmarks(cfg.Data.LandmarksPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("WARNING: no landmarks file at %s, narration will not reference landmarks", cfg.Data.LandmarksPath)
		landmarks = nil
	}

	return NewRoutingService(g, landmarks, cfg.Routing.MaxExpansions), nil
}

func (rs *RoutingService) Route(start, end geo.Coordinate) routing.RouteResult {
	return rs.router.Route(start, end)
}

func (rs *RoutingService) Router() *routing.Router {
	return rs.router
}

func (rs *RoutingService) Landmarks() []models.Landmark {
	return rs.landmarks
}

func (rs *RoutingService) GraphStats() (nodes, edges int) {
	return len(rs.graph.Nodes), rs.graph.EdgeCount()
}
