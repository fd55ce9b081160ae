// Command demosite serves the ACME Bank demo application standalone, for
// poking at the pages the workshop suites test.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acmebank/ui-workshop/internal/config"
	"github.com/acmebank/ui-workshop/internal/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	e, err := site.New()
	if err != nil {
		log.Fatalf("Failed to build demo site: %v", err)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Demo site stopped: %v", err)
		}
	}()
	log.Printf("Demo site listening on :%s", cfg.Port)

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown failed: %v", err)
	}
}
