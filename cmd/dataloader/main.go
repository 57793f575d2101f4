package main

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/dmitrijs2005/aitooling/internal/dataloader"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/config"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("error loading .env: %v", err)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := dataloader.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
