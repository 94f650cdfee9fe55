// terrapaint paints terrain canvases and exports the geometry derived
// from them.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/config"
	"github.com/Faultbox/terrapaint/internal/logger"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "new":
		err = cmdNew(cfg, rest)
	case "paint":
		err = cmdPaint(cfg, rest)
	case "export":
		err = cmdExport(cfg, rest)
	case "info":
		err = cmdInfo(cfg, rest)
	case "view":
		err = cmdView(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terrapaint - terrain canvas painter

Usage:
  terrapaint [global flags] <command> [options]

Commands:
  new <dir>                       Create a level with flat canvases
  paint [options] <dir>           Apply brush dabs to a level and save it
  export <dir>                    Regenerate collision mesh and nav grid
  info <dir>                      Show canvas, scene and nav statistics
  view [-model path] <dir>        Open the interactive preview

Global flags:
  -config, -debug, -log, -extent, -height-scale, -height-size,
  -stamps, -topology

Examples:
  terrapaint new levels/island
  terrapaint paint -mode height -op up -size 20 -at 256,256 -repeat 10 levels/island
  terrapaint paint -mode walk -at 100,100 -at 110,100 levels/island
  terrapaint -topology data/collision.obj export levels/island`)
}
