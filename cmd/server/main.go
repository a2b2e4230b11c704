package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/passgate/internal/buildinfo"
	"github.com/dmitrijs2005/passgate/internal/server"
	"github.com/dmitrijs2005/passgate/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	if cfg.PrintDigest {
		if err := server.PrintDigest(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
