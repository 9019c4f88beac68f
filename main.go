package main

import (
	"resource-scheduler/core/logger"
	"resource-scheduler/core/server"

	_ "resource-scheduler/docs" // Swagger docs
)

// @title Resource Scheduler API
// @version 1.0
// @description Calendar connections and resource-booking events for the Resource Scheduler backend.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
