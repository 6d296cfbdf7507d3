package main

import (
	"CivicLearn/internal/app"
	"CivicLearn/internal/config"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Run(cfg)
}
