package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/config"
	"github.com/Epistemic-Technology/pdfsplit/server"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	log, err := cfg.Logger()
	if err != nil {
		panic(err)
	}

	log.Info("Starting pdfsplit MCP server")

	srv, closeServer := server.CreateServer(cfg, log)
	defer closeServer()
	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Error("Server failed: %v", err)
	}
}
