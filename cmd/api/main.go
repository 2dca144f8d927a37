package main

import (
	_ "safarpay/docs"
	"safarpay/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Safarpay Payments API
// @version         1.0
// @description     Booking payments service (Chapa gateway) backed by DynamoDB.

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a token.

func main() {
	routes.Run()
}
