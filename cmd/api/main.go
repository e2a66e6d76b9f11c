package main

import (
	"os"

	"github.com/vuhoang/defcom/internal/pkg/logger"
	"github.com/vuhoang/defcom/internal/server"
)

// @title Defense Committee Scheduling API
// @version 1.0
// @description Committee formation, topic eligibility and defense slot scheduling for thesis defenses

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token minted by the identity service

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
