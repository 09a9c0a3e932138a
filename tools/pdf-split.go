package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/config"
	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/operations"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

type PDFSplitQuery struct {
	InputPath    string  `json:"input_path"`               // Path of the PDF to split
	OutputDir    string  `json:"output_dir,omitempty"`     // Defaults to the configured directory, then the input's directory
	PagesPerPart int     `json:"pages_per_part,omitempty"` // Split into parts of this many pages
	MaxSizeMB    float64 `json:"max_size_mb,omitempty"`    // Split into parts no larger than this many megabytes
}

type PDFSplitResponse struct {
	RunID      string         `json:"run_id,omitempty"`
	TotalPages int            `json:"total_pages"`
	Parts      []models.Chunk `json:"parts"`
	Message    string         `json:"message"`
}

func PDFSplitTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFSplitQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-split",
		Description: "Split a PDF file into parts, either by a fixed number of pages per part (pages_per_part) or by a maximum file size in megabytes (max_size_mb). Exactly one of the two must be given. Parts are written as {name}_part_{n}.pdf.",
		InputSchema: inputschema,
	}
}

func PDFSplitToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFSplitQuery, store storage.Store, defaults config.SplitConfig, log logger.Logger) (*mcp.CallToolResult, *PDFSplitResponse, error) {
	log.Info("pdf-split tool called for %s", query.InputPath)

	policy, err := operations.SelectPolicy(query.PagesPerPart, query.MaxSizeMB)
	if err != nil {
		return nil, nil, err
	}

	outputDir := query.OutputDir
	if outputDir == "" {
		outputDir = defaults.DefaultOutputDir
	}
	splitReq := models.SplitRequest{InputPath: query.InputPath, OutputDir: outputDir, Policy: policy}

	result, err := operations.Split(splitReq, nil, log)
	runID := operations.RecordRun(ctx, store, operations.SplitRecord(splitReq, result, err), log)
	if err != nil {
		log.Error("pdf-split tool failed: %v", err)
		return nil, nil, err
	}

	return nil, &PDFSplitResponse{
		RunID:      runID,
		TotalPages: result.TotalPages,
		Parts:      result.Chunks,
		Message:    result.Message,
	}, nil
}
