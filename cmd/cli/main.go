package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/mkraev/atelier/internal/client/cli"
	"github.com/mkraev/atelier/internal/client/config"
)

// globalFlags are consumed by the config layer and may precede the
// subcommand; they all take a value.
var globalFlags = map[string]bool{
	"-a": true, "-o": true, "-n": true, "-k": true, "-w": true,
	"-c": true, "-config": true,
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	args := os.Args[1:]
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		if globalFlags[args[0]] && len(args) > 1 {
			args = args[2:]
			continue
		}
		args = args[1:]
	}

	if err := app.Run(ctx, args); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
