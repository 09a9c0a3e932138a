package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/operations"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

type PDFMergeQuery struct {
	InputPaths []string `json:"input_paths"`           // PDFs to concatenate, in order
	OutputDir  string   `json:"output_dir,omitempty"`  // Defaults to the first input's directory
	OutputName string   `json:"output_name,omitempty"` // Defaults to {first input}_merge.pdf
}

type PDFMergeResponse struct {
	RunID      string `json:"run_id,omitempty"`
	OutputPath string `json:"output_path"`
	TotalPages int    `json:"total_pages"`
	Size       int64  `json:"size"`
	Message    string `json:"message"`
}

func PDFMergeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFMergeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-merge",
		Description: "Merge PDF files into one document. Pages are concatenated in the order the files are given. The output is named after the first input with a _merge suffix unless output_name is set.",
		InputSchema: inputschema,
	}
}

func PDFMergeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFMergeQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PDFMergeResponse, error) {
	log.Info("pdf-merge tool called with %d inputs", len(query.InputPaths))

	mergeReq := models.MergeRequest{
		InputPaths: query.InputPaths,
		OutputDir:  query.OutputDir,
		OutputName: query.OutputName,
	}

	result, err := operations.Merge(mergeReq, nil, log)
	runID := operations.RecordRun(ctx, store, operations.MergeRecord(mergeReq, result, err), log)
	if err != nil {
		log.Error("pdf-merge tool failed: %v", err)
		return nil, nil, err
	}

	return nil, &PDFMergeResponse{
		RunID:      runID,
		OutputPath: result.OutputPath,
		TotalPages: result.TotalPages,
		Size:       result.Size,
		Message:    result.Message,
	}, nil
}
