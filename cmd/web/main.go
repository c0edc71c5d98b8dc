package main

import (
	"context"
	"log"

	"github.com/Apurer/pet-community/internal/app/web"
)

func main() {
	cfg, err := web.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := web.Run(context.Background(), cfg); err != nil {
		log.Fatalf("community web exited: %v", err)
	}
}
