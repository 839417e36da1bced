package clicmds

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/visitkit/visitk"
)

// loadConfig from --config if given, otherwise from flags. Flags fill in
// anything the config file left empty.
func loadConfig(cliCtx *cli.Context) (*visitk.Config, error) {
	cfg := &visitk.Config{}
	if path := cliCtx.String("config"); path != "" {
		var err error
		if cfg, err = visitk.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if cfg.URL == "" {
		cfg.URL = cliCtx.String("url")
	}
	if len(cfg.Paths) == 0 {
		cfg.Paths = cliCtx.StringSlice("path")
	}
	if cfg.DataPath == "" {
		cfg.DataPath = cliCtx.String("datadir")
	}
	if cfg.Engine == "" {
		cfg.Engine = cliCtx.String("engine")
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = cliCtx.String("chrome")
	}
	if cliCtx.Bool("headless") {
		cfg.Headless = true
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = cliCtx.String("loglevel")
	}
	if cfg.VisitTimeout == 0 {
		cfg.VisitTimeout = cliCtx.Int("timeout")
	}

	setLogLevel(cfg.LogLevel)
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		spew.Dump(cfg)
	}
	return cfg, nil
}

func setLogLevel(level string) {
	if level == "" {
		return
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Err(err).Str("level", level).Msg("unknown log level, leaving as is")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
