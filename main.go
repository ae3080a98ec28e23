// @title SkillMatrix API
// @version 1.0
// @description Employee skills and knowledge assessment backend.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"skill_matrix_backend/internal/app"
	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
