package main

import (
	"context"
	"log"

	"ai-studypal-be/internal/bootstrap"
	"ai-studypal-be/internal/config"
	"ai-studypal-be/internal/server"
	"ai-studypal-be/internal/tracer"
)

func main() {
	// 1. Initialize tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Load configuration
	cfg := config.Load()

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(cfg, nil)
	defer container.Logger.Sync()

	// 4. Start background consumer
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 5. Run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
