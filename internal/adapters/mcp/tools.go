// Package mcp exposes the match-context operations as MCP tools.
//
// Each tool returns the same JSON document as the matching HTTP endpoint.
// Failures are reported as error results rather than protocol errors so the
// calling model can read them.
package mcp

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/okian/robonalysis/internal/domain/model"
	"github.com/okian/robonalysis/internal/domain/types"
	"github.com/okian/robonalysis/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tool names.
const (
	ToolTeamMatchContext = "team_match_context"
	ToolEventStandings   = "event_standings"
	ToolTeamPerformance  = "team_performance"
)

// Dependencies are the service operations the tools call.
type Dependencies interface {
	ComputeMatchContext(ctx context.Context, teamID string) (*model.MatchContext, error)
	EventStandings(ctx context.Context, eventID string, limit int) (model.EventStandings, error)
	TeamPerformance(ctx context.Context, teamID string) (model.Performance, error)
}

// Tools implements the tool list and dispatch.
type Tools struct {
	deps   Dependencies
	logger logger.Logger
}

// NewTools creates the tool set.
func NewTools(deps Dependencies, l logger.Logger) *Tools {
	if l == nil {
		l = logger.Nop()
	}
	return &Tools{deps: deps, logger: l}
}

func idSchema(name, description string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			name: map[string]interface{}{
				"type":        "string",
				"description": description,
				"required":    true,
			},
		},
	}
}

func standingsSchema() mcp.ToolInputSchema {
	schema := idSchema("event_id", "RobotEvents numeric event id")
	schema.Properties["limit"] = map[string]interface{}{
		"type":        "integer",
		"description": "Keep only this many top rows; omit or 0 for the whole table",
		"minimum":     0,
	}
	return schema
}

// List returns every tool definition.
func (t *Tools) List() []mcp.Tool {
	return []mcp.Tool{
		{
			Name: ToolTeamMatchContext,
			Description: "Replay every event a RobotEvents team attended and return, for each of its matches, " +
				"the team's strength points (SP) and each alliance's strength of schedule (SOS) before the match",
			InputSchema: idSchema("team_id", "RobotEvents numeric team id"),
		},
		{
			Name:        ToolEventStandings,
			Description: "Final strength-point table for one RobotEvents event, optionally cut to the top teams",
			InputSchema: standingsSchema(),
		},
		{
			Name:        ToolTeamPerformance,
			Description: "Win/loss/tie record and average scores for a RobotEvents team",
			InputSchema: idSchema("team_id", "RobotEvents numeric team id"),
		},
	}
}

// Call dispatches a tool call by name.
func (t *Tools) Call(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	t.logger.Info(ctx, "tool called", logger.String("tool", name))

	switch name {
	case ToolTeamMatchContext:
		id, err := stringArg(args, "team_id")
		if err != nil {
			return errorResult(err), nil
		}
		mc, err := t.deps.ComputeMatchContext(ctx, id)
		if err != nil {
			return t.failed(ctx, name, err), nil
		}
		return jsonResult(types.NewContextResponse(mc))

	case ToolEventStandings:
		id, err := stringArg(args, "event_id")
		if err != nil {
			return errorResult(err), nil
		}
		limit, err := limitArg(args, "limit")
		if err != nil {
			return errorResult(err), nil
		}
		st, err := t.deps.EventStandings(ctx, id, limit)
		if err != nil {
			return t.failed(ctx, name, err), nil
		}
		return jsonResult(st)

	case ToolTeamPerformance:
		id, err := stringArg(args, "team_id")
		if err != nil {
			return errorResult(err), nil
		}
		perf, err := t.deps.TeamPerformance(ctx, id)
		if err != nil {
			return t.failed(ctx, name, err), nil
		}
		return jsonResult(perf)

	default:
		t.logger.Warn(ctx, "unknown tool called", logger.String("tool", name))
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownTool, name)), nil
	}
}

func (t *Tools) failed(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	t.logger.Error(ctx, "tool failed", logger.String("tool", tool), logger.Error(err))
	return errorResult(err)
}

// stringArg reads a required id that clients may send as a string or number.
func stringArg(args map[string]interface{}, name string) (string, error) {
	switch v := args[name].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s, nil
		}
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	case int:
		return strconv.Itoa(v), nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
}

// limitArg reads an optional non-negative whole number; absent means 0.
func limitArg(args map[string]interface{}, name string) (int, error) {
	var n float64
	switch v := args[name].(type) {
	case nil:
		return 0, nil
	case float64:
		n = v
	case int:
		n = float64(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidArgument, name)
		}
		n = float64(parsed)
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidArgument, name)
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidArgument, name)
	}
	return int(n), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Type: "text", Text: string(body)}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Type: "text", Text: err.Error()}},
		IsError: true,
	}
}
