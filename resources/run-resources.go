package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
)

const runScheme = "pdfsplit://runs/"

// RunURI returns the resource URI of a recorded run
func RunURI(runID string) string {
	return runScheme + runID
}

// RunResourceHandler serves recorded split and merge runs
type RunResourceHandler struct {
	store storage.Store
}

// NewRunResourceHandler creates a new run resource handler
func NewRunResourceHandler(store storage.Store) *RunResourceHandler {
	return &RunResourceHandler{store: store}
}

// ListResources returns one resource per recorded run
func (h *RunResourceHandler) ListResources(ctx context.Context, limit int) ([]mcp.Resource, error) {
	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var resources []mcp.Resource
	for _, run := range runs {
		resources = append(resources, mcp.Resource{
			URI:         RunURI(run.RunID),
			Name:        fmt.Sprintf("%s %s", run.Operation, strings.Join(run.Inputs, ", ")),
			Description: fmt.Sprintf("%s run from %s with %d output files", run.Operation, run.CreatedAt.Format("2006-01-02 15:04:05"), len(run.Outputs)),
			MIMEType:    "application/json",
		})
	}

	return resources, nil
}

// ReadResource reads a run by URI: pdfsplit://runs/{runId}
func (h *RunResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if !strings.HasPrefix(uri, runScheme) {
		return nil, fmt.Errorf("invalid URI, expected %s{runId}", runScheme)
	}
	runID := strings.TrimPrefix(uri, runScheme)
	if runID == "" || strings.Contains(runID, "/") {
		return nil, fmt.Errorf("invalid URI, malformed run ID: %s", uri)
	}

	run, err := h.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	content, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
