package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatsURI identifies the cache and query statistics resource.
const StatsURI = "iconify://stats"

// registerStatsResource registers the stats resource.
func (s *Server) registerStatsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "stats",
			URI:         StatsURI,
			Description: "Result cache and query statistics for this session",
			MIMEType:    "application/json",
		},
		s.handleStatsResource,
	)
}

func (s *Server) handleStatsResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(s.Stats(), "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      StatsURI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

// Stats returns the cache and query statistics.
func (s *Server) Stats() StatsOutput {
	return StatsOutput{
		Cache:   s.engine.CacheStats(),
		Queries: s.recorder.Snapshot(),
	}
}
