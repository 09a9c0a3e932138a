package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

const defaultHistoryLimit = 20

type RunHistoryQuery struct {
	Limit int `json:"limit,omitempty"` // Max runs returned (default 20)
}

type RunHistoryResponse struct {
	Runs  []models.RunRecord `json:"runs"`
	Count int                `json:"count"`
}

func RunHistoryTool() *mcp.Tool {
	inputschema, err := jsonschema.For[RunHistoryQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "run-history",
		Description: "List recent split and merge runs, newest first, with the files each run produced. Individual runs are also available as pdfsplit://runs/{runId} resources.",
		InputSchema: inputschema,
	}
}

func RunHistoryToolHandler(ctx context.Context, req *mcp.CallToolRequest, query RunHistoryQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *RunHistoryResponse, error) {
	log.Info("run-history tool called")
	if store == nil {
		return nil, nil, errors.New("run history is disabled")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		log.Error("run-history tool failed: %v", err)
		return nil, nil, err
	}

	return nil, &RunHistoryResponse{Runs: runs, Count: len(runs)}, nil
}
