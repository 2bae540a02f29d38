package main

import (
	"context"
	"log/slog"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fitcatalog/exercisedb-mcp/internal/exercisedb"
	"github.com/fitcatalog/exercisedb-mcp/internal/mcp"
)

const defaultAPIBaseURL = "https://api.api-ninjas.com/v1"

func main() {
	// Create log file
	logPath := os.Getenv("MCP_LOG_FILE")
	if logPath == "" {
		logPath = "/tmp/exercisedb-mcp-server.log"
	}

	// Open log file
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fallback to stderr if we can't open the log file
		logFile = os.Stderr
	} else {
		defer logFile.Close()
	}

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()

	// Get server name and version from environment or use defaults
	serverName := os.Getenv("MCP_SERVER_NAME")
	if serverName == "" {
		serverName = "exercisedb-mcp"
	}

	serverVersion := os.Getenv("MCP_SERVER_VERSION")
	if serverVersion == "" {
		serverVersion = "0.1.0"
	}

	// Configure the exercise API client
	baseURL := os.Getenv("EXERCISEDB_API_URL")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	var clientOpts []exercisedb.Option
	if apiKey := os.Getenv("EXERCISEDB_API_KEY"); apiKey != "" {
		clientOpts = append(clientOpts, exercisedb.WithAPIKey(apiKey))
	}
	client := exercisedb.NewClient(baseURL, logger, clientOpts...)

	// Initialize the exercise MCP server
	server, err := mcp.NewExerciseServer(serverName, serverVersion, client, logger)
	if err != nil {
		logger.Error("Failed to create exercise MCP server", "error", err)
		os.Exit(1)
	}

	// Start serving over stdio
	logger.Info("Starting exercise MCP server over stdio...", "name", serverName, "version", serverVersion, "api", baseURL)
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		logger.Error("Exercise MCP server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Exercise MCP server finished")
}
