package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shithead-online/server/internal/config"
	"github.com/shithead-online/server/internal/logger"
	"github.com/shithead-online/server/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	logToFile := flag.Bool("log-file", false, "log to ~/.shithead-server/server.log instead of stderr")
	flag.Parse()

	if *logToFile {
		if err := logger.Init(); err != nil {
			log.Printf("file logging unavailable: %v", err)
		} else {
			fmt.Printf("logging to %s\n", logger.GetLogPath())
			defer logger.Close()
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config load failed, using defaults: %v", err)
		cfg = config.Default()
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("server construction failed: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("shutting down...")
		srv.Shutdown()
		os.Exit(0)
	}()

	log.Println("🎮 shithead server starting...")
	if err := srv.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
