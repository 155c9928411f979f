package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/HossamAbdelnaby/bracket-engine/internal/config"
	"github.com/HossamAbdelnaby/bracket-engine/internal/db"
	"github.com/HossamAbdelnaby/bracket-engine/internal/live"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	hub := live.NewHub()
	go hub.Run()

	router := newRouter(database, hub)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Println("Server starting on http://localhost" + addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}
