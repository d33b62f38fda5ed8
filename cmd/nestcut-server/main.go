// nestcut-server — HTTP service exposing the nesting engine.
//
// Jobs are submitted with POST /api/nest, polled with GET /api/nest/:id
// and cancelled with DELETE /api/nest/:id. Configuration comes from
// NESTCUT_-prefixed environment variables.
//
// Build:
//
//	go build -o nestcut-server ./cmd/nestcut-server
package main

import (
	"fmt"
	"log"

	"github.com/piwi3910/NestCut/internal/config"
	"github.com/piwi3910/NestCut/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	srv := server.New(cfg)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("nestcut-server listening on %s", addr)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
