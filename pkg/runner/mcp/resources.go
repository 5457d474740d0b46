package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/focussync/pkg/task"
)

// registerResources adds every resource and returns their URIs.
func registerResources(srv *server.MCPServer, svc *Service) []string {
	return []string{
		registerSessionsResource(srv, svc),
		registerPresetsResource(srv),
	}
}

func registerSessionsResource(srv *server.MCPServer, svc *Service) string {
	resource := mcp.NewResource(
		"focussync://sessions",
		"Sessions",
		mcp.WithResourceDescription("The three most recent focus sessions, newest first."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sessions, err := svc.ListSessions(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"sessions": sessions,
			"count":    len(sessions),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
	return resource.URI
}

func registerPresetsResource(srv *server.MCPServer) string {
	resource := mcp.NewResource(
		"focussync://presets",
		"Saved tasks",
		mcp.WithResourceDescription("Built-in saved tasks that can be loaded into a draft."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		presets := task.Presets()
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"presets": presets,
			"count":   len(presets),
			"tags":    task.AvailableTags,
		})
	})
	return resource.URI
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
