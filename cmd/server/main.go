package main

import (
	"context"
	"log"

	"github.com/dkarklis/gatehouse/internal/app"
	"github.com/dkarklis/gatehouse/internal/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("%v", err)
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)

}
