package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	shapeaudit "github.com/theoremus-urban-solutions/gtfs-shape-audit"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/config"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/formatter"
	"github.com/theoremus-urban-solutions/gtfs-shape-audit/internal"
)

type Options struct {
	Mode       string `short:"m" long:"mode"       env:"MODE"        default:"oneshot" choice:"oneshot" choice:"serve" description:"Audit once and print the report, or serve the HTTP API"`
	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE" description:"Path to configuration file"`
	Feed       string `short:"f" long:"feed"       env:"FEED_SOURCE" description:"GTFS feed to audit: zip, directory, or URL (overrides config)"`
	VehiclePos string `long:"vehicle-positions"    env:"VEHICLE_POSITIONS_URL" description:"GTFS-RT VehiclePositions URL (overrides config)"`
	Format     string `long:"format"               env:"FORMAT"      default:"json" choice:"json" choice:"yaml" description:"Report output format"`
	Output     string `short:"o" long:"output"     env:"OUTPUT"      description:"Write the report to a file instead of stdout"`
	Port       int    `short:"p" long:"port"       env:"PORT"        description:"HTTP port for serve mode (overrides config)"`
	LogLevel   string `short:"L" long:"log-level"  env:"LOG_LEVEL"   description:"trace, debug, info, warn, or error (overrides config)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.Feed != "" {
		cfg.Feed.Source = opts.Feed
	}
	if opts.VehiclePos != "" {
		cfg.Realtime.VehiclePositionsURL = opts.VehiclePos
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	logger := internal.InitLogging(cfg.LogLevel)

	switch opts.Mode {
	case "serve":
		srv := shapeaudit.NewServer(*cfg, logger)
		srv.Start()
		srv.WaitForShutdown()
	default:
		engine := shapeaudit.NewEngine(*cfg, logger)
		report, err := engine.Audit()
		if err != nil {
			log.Fatal().Err(err).Msg("audit failed")
		}
		buf, _, err := formatter.Render(report, opts.Format)
		if err != nil {
			log.Fatal().Err(err).Msg("rendering report failed")
		}
		if opts.Output != "" {
			if err := os.WriteFile(opts.Output, buf, 0o644); err != nil {
				log.Fatal().Err(err).Msg("writing report failed")
			}
			logger.Info().Str("path", opts.Output).Msg("report written")
			return
		}
		fmt.Println(string(buf))
	}
}
