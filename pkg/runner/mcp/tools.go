package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/focussync/pkg/task"
	"tableflip.dev/focussync/pkg/timeutil"
)

// registerTools adds every tool and returns their names in order.
func registerTools(srv *server.MCPServer, svc *Service) []string {
	var names []string
	for _, register := range []func(*server.MCPServer, *Service) string{
		registerListSessionsTool,
		registerSummarizeSessionsTool,
		registerRecordSessionTool,
		registerClassifyVideoTool,
		registerConvertAmountTool,
	} {
		names = append(names, register(srv, svc))
	}
	return names
}

func registerListSessionsTool(srv *server.MCPServer, svc *Service) string {
	tool := mcp.NewTool(
		"list_sessions",
		mcp.WithDescription("List the most recent focus sessions, newest first."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessions, err := svc.ListSessions(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"sessions": sessions,
			"count":    len(sessions),
		})
	})
	return tool.Name
}

func registerSummarizeSessionsTool(srv *server.MCPServer, svc *Service) string {
	tool := mcp.NewTool(
		"summarize_sessions",
		mcp.WithDescription("Total focus time and tokens for sessions in a time window."),
		mcp.WithString("last",
			mcp.Description("Window such as 3d or 1w2d; empty covers every stored session."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var window time.Duration
		if last := strings.TrimSpace(request.GetString("last", "")); last != "" {
			d, _, err := timeutil.ParseWindow(last)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			window = d
		}

		report, err := svc.Summarize(ctx, window)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		intensities := make([]map[string]any, 0, len(report.Intensities))
		for _, it := range report.Intensities {
			intensities = append(intensities, map[string]any{
				"intensity": it.Intensity,
				"sessions":  it.Sessions,
				"seconds":   int(it.Focused / time.Second),
			})
		}
		return toJSONResult(map[string]any{
			"sessions":    len(report.Sessions),
			"focused":     timeutil.FormatWindow(report.Focused),
			"tokens":      report.Tokens,
			"byIntensity": intensities,
		})
	})
	return tool.Name
}

func registerRecordSessionTool(srv *server.MCPServer, svc *Service) string {
	tool := mcp.NewTool(
		"record_session",
		mcp.WithDescription("Record a completed focus session. Only the three most recent sessions are kept."),
		mcp.WithString("taskName",
			mcp.Required(),
			mcp.Description("Name of the task that was worked on."),
		),
		mcp.WithNumber("minutes",
			mcp.Required(),
			mcp.Description("Length of the session in minutes."),
			mcp.Min(1),
		),
		mcp.WithString("vibe",
			mcp.Description("Mood the task was set up under."),
			mcp.Enum(vibeNames()...),
		),
		mcp.WithArray("tags",
			mcp.Description("Capability tags for the task."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("costTags",
			mcp.Description("Cost labels such as $2/min."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			TaskName string   `json:"taskName"`
			Minutes  float64  `json:"minutes"`
			Vibe     string   `json:"vibe"`
			Tags     []string `json:"tags"`
			CostTags []string `json:"costTags"`
		}

		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.RecordSession(ctx, RecordSessionOptions{
			TaskName: args.TaskName,
			Vibe:     args.Vibe,
			Minutes:  int(args.Minutes),
			Tags:     args.Tags,
			CostTags: args.CostTags,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
	return tool.Name
}

func registerClassifyVideoTool(srv *server.MCPServer, svc *Service) string {
	tool := mcp.NewTool(
		"classify_video",
		mcp.WithDescription("Detect the platform and thumbnail for a reference video link."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Video link to classify."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.ClassifyVideo(url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
	return tool.Name
}

func registerConvertAmountTool(srv *server.MCPServer, svc *Service) string {
	tool := mcp.NewTool(
		"convert_amount",
		mcp.WithDescription("Convert a USD amount into the integer cents sent with a group payment."),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Decimal USD amount, for example 0.23."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount, err := request.RequireString("amount")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.ConvertAmount(amount)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
	return tool.Name
}

func vibeNames() []string {
	vibes := task.Vibes()
	out := make([]string, 0, len(vibes))
	for _, v := range vibes {
		out = append(out, string(v))
	}
	return out
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
