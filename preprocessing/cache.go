package preprocessing

import (
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"campus-navigator/routing"
)

// SaveGraph writes g as a gob file, creating parent directories.
func SaveGraph(g *routing.Graph, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", outputPath, err)
	}

	gobFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create GOB file %s: %w", outputPath, err)
	}
	return writeGraph(g, gobFile, outputPath)
}

// writeGraph encodes g into w and closes it. A failed close means the cache may be
// truncated, so it is reported like an encode failure.
func writeGraph(g *routing.Graph, w io.WriteCloser, outputPath string) error {
	if err := gob.NewEncoder(w).Encode(g); err != nil {
		w.Close()
		return fmt.Errorf("failed to encode GOB to %s: %w", outputPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GOB file %s: %w", outputPath, err)
	}
	return nil
}

// LoadGraph reads a gob graph written by SaveGraph.
func LoadGraph(filename string) (*routing.Graph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	graph := routing.NewGraph()
	if err := gob.NewDecoder(file).Decode(graph); err != nil {
		return nil, fmt.Errorf("failed to decode GOB %s: %w", filename, err)
	}

	log.Printf("Loaded graph from %s: %d nodes, %d edges", filename, len(graph.Nodes), graph.EdgeCount())
	return graph, nil
}

// ConvertNetwork builds a graph from a GeoJSON network and caches it as gob.
func ConvertNetwork(inputPath, outputPath string) (*routing.Graph, error) {
	lines, _, err := LoadNetwork(inputPath)
	if err != nil {
		return nil, err
	}
	graph := routing.BuildGraph(lines)
	if err := SaveGraph(graph, outputPath); err != nil {
		return nil, err
	}
	log.Printf("Successfully converted %s to %s (nodes: %d, edges: %d)",
		inputPath, outputPath, len(graph.Nodes), graph.EdgeCount())
	return graph, nil
}

// LoadOrBuildGraph prefers a cache that is newer than the network file and
// rebuilds it otherwise. A cache that cannot be written is logged, not fatal.
func LoadOrBuildGraph(networkPath, cachePath string) (*routing.Graph, error) {
	if cachePath != "" && cacheFresh(networkPath, cachePath) {
		g, err := LoadGraph(cachePath)
		if err == nil {
			return g, nil
		}
		log.Printf("WARNING: ignoring graph cache %s: %v", cachePath, err)
	}

	lines, _, err := LoadNetwork(networkPath)
	if err != nil {
		return nil, err
	}
	g := routing.BuildGraph(lines)
	if cachePath != "" {
		if err := SaveGraph(g, cachePath); err != nil {
			log.Printf("WARNING: could not write graph cache: %v", err)
		}
	}
	return g, nil
}

func cacheFresh(networkPath, cachePath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	netInfo, err := os.Stat(networkPath)
	if err != nil {
		// network missing: the cache is all we have
		return true
	}
	return !cacheInfo.ModTime().Before(netInfo.ModTime())
}
