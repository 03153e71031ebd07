package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxwallet-hq/voxwallet/pkg/config"
	"github.com/voxwallet-hq/voxwallet/pkg/conversation"
	"github.com/voxwallet-hq/voxwallet/pkg/service"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The console transport drives the agent over stdin/stdout. A platform
	// integration plugs in here by providing its own Transport and EventSource.
	console := conversation.NewConsole(1, os.Stdin, os.Stdout)

	svc, err := service.NewService(ctx, cfg, console, console)
	if err != nil {
		log.Fatalf("Failed to create wallet agent service: %v", err)
	}

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Println("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	// Start the service
	log.Println("Starting the wallet agent service...")
	svc.Start(ctx)
}
