package main

import (
	"context"
	"log"

	"govllminer-be/internal/bootstrap"
	"govllminer-be/internal/config"
	"govllminer-be/internal/server"
	"govllminer-be/internal/tracer"
	"govllminer-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		log.Panicf("Unable to run migrations: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	go func() {
		log.Println("Background: Starting Mail Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
