package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/config"
	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/resources"
	"github.com/Epistemic-Technology/pdfsplit/tools"
)

// CreateServer builds the MCP server. The returned function closes the
// history store and should be called once the server stops.
func CreateServer(cfg *config.Config, log logger.Logger) (*mcp.Server, func()) {
	server := mcp.NewServer(&mcp.Implementation{Name: "pdfsplit", Version: "v0.1.0"}, nil)

	store, err := InitializeStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	closeStore := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				log.Warn("Failed to close history store: %v", err)
			}
		}
	}

	mcp.AddTool(server, tools.PDFSplitTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFSplitQuery) (*mcp.CallToolResult, *tools.PDFSplitResponse, error) {
		return tools.PDFSplitToolHandler(ctx, req, query, store, cfg.Split, log)
	})

	mcp.AddTool(server, tools.PDFMergeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFMergeQuery) (*mcp.CallToolResult, *tools.PDFMergeResponse, error) {
		return tools.PDFMergeToolHandler(ctx, req, query, store, log)
	})

	if store == nil {
		return server, closeStore
	}

	mcp.AddTool(server, tools.RunHistoryTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.RunHistoryQuery) (*mcp.CallToolResult, *tools.RunHistoryResponse, error) {
		return tools.RunHistoryToolHandler(ctx, req, query, store, log)
	})

	runResourceHandler := resources.NewRunResourceHandler(store)

	// Template for a recorded run
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "pdfsplit://runs/{runId}",
		Name:        "pdfsplit-run",
		Description: "A recorded split or merge run with its output files",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return runResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server, closeStore
}

// InitializeStorage opens the history database, or returns a nil store
// when history is disabled
func InitializeStorage(cfg *config.Config, log logger.Logger) (storage.Store, error) {
	if !cfg.History.Enabled {
		log.Info("Run history disabled")
		return nil, nil
	}

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	return store, nil
}
