package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vectord/internal/cluster"
	"vectord/internal/config"
	vectorHttp "vectord/internal/http"
	"vectord/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fmt.Println("Initializing vectord...")
	storage, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	if names := storage.List(); len(names) > 0 {
		fmt.Printf("Loaded %d collections from disk.\n", len(names))
	} else {
		fmt.Println("No collections found. Starting fresh.")
	}

	var writer vectorHttp.Writer
	var node *cluster.Node
	if cfg.RaftEnabled {
		bindAddr := fmt.Sprintf("127.0.0.1:%d", cfg.RaftPort)
		node, err = cluster.NewNode(cfg.NodeID, cfg.RaftDir, bindAddr, storage, cfg.RaftBootstrap)
		if err != nil {
			log.Fatalf("failed to start raft: %v", err)
		}
		writer = node
		log.Printf("raft enabled, node %s listening on %s", cfg.NodeID, bindAddr)
	}

	app := fiber.New()
	app.Use(logger.New())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler := vectorHttp.NewHandler(storage, writer)
	handler.Register(app)

	// Periodic snapshots keep WAL replay short after a crash.
	stopSaver := make(chan struct{})
	if cfg.SnapshotInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SnapshotInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := storage.SaveAll(); err != nil {
						log.Printf("background save failed: %v", err)
					}
				case <-stopSaver:
					return
				}
			}
		}()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		log.Printf("vectord listening on port %d", cfg.HTTPPort)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	close(stopSaver)
	if err := app.Shutdown(); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if node != nil {
		if err := node.Shutdown(); err != nil {
			log.Printf("raft shutdown: %v", err)
		}
	}
	if err := storage.SaveAll(); err != nil {
		log.Printf("final save failed: %v", err)
	}
	if err := storage.Close(); err != nil {
		log.Printf("storage close: %v", err)
	}
	log.Println("bye")
}
