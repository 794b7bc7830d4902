package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkraev/atelier/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the control-plane API
//	-o string   ERP host URL
//	-n string   ERP database name
//	-k int      rows per intent batch
//	-w int      conflict retry delay, milliseconds
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-n", "-k", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the control-plane API")
	fs.StringVar(&cfg.ERPHost, "o", cfg.ERPHost, "ERP host URL")
	fs.StringVar(&cfg.ERPDatabase, "n", cfg.ERPDatabase, "ERP database name")
	fs.IntVar(&cfg.BatchSize, "k", cfg.BatchSize, "rows per intent batch")
	conflictDelay := fs.Int("w", int(cfg.ConflictDelay.Milliseconds()), "conflict retry delay (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ConflictDelay = time.Duration(*conflictDelay) * time.Millisecond
}
