package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "photodesigner/internal/mcp"
	"photodesigner/internal/secret"
	"photodesigner/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It opens the service stack and serves until stdin closes or the process
// is interrupted.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stack, err := service.OpenStack(service.DefaultDataDir(), secret.Default(), service.NopEmitter{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer stack.Close()

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Designs: stack.Designs,
		Editors: stack.Editors,
		Mirrors: stack.Mirrors,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- mcpSrv.ServeStdio() }()

	select {
	case <-ctx.Done():
		log.Println("[MCP] Interrupted, shutting down")
	case err := <-errCh:
		if err != nil {
			log.Printf("MCP server error: %v", err)
		}
	}
}
