package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/saireecmpo/portal/internal/server"
	"github.com/saireecmpo/portal/internal/server/config"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
