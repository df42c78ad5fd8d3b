package main

import (
	"log"

	"taskboard/internal/config"
	"taskboard/internal/server"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		logger.Fatal("server initialization failed", zap.Error(err))
	}

	s.Run()
}
