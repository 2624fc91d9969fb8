package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs.
const (
	SchemaURI   = "schema://database"
	InsightsURI = "memo://insights"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(
		mcp.NewResource(SchemaURI, "Database schema",
			mcp.WithResourceDescription("Tables of the governed schema and their columns"),
			mcp.WithMIMEType("application/json"),
		),
		func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      SchemaURI,
					MIMEType: "application/json",
					Text:     s.surface.SchemaDocument(),
				},
			}, nil
		},
	)

	s.mcp.AddResource(
		mcp.NewResource(InsightsURI, "Insights memo",
			mcp.WithResourceDescription("Findings recorded during the analysis"),
			mcp.WithMIMEType("text/plain"),
		),
		func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      InsightsURI,
					MIMEType: "text/plain",
					Text:     s.surface.InsightsMemo(),
				},
			}, nil
		},
	)
}
