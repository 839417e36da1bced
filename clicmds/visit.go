package clicmds

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/visitkit/engine/chrome"
	"gitlab.com/visitkit/engine/loop"
	"gitlab.com/visitkit/engine/sim"
	"gitlab.com/visitkit/session"
	"gitlab.com/visitkit/store"
	"gitlab.com/visitkit/visitk"
	"gitlab.com/visitkit/visitor"
)

// VisitFlags configures a visit run
func VisitFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "url to cold boot",
			Value: "http://localhost/",
		},
		&cli.StringSliceFlag{
			Name:  "path",
			Usage: "paths (relative to url) to visit in page after booting",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "config to use",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "sim or chrome",
			Value: "sim",
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "path to chrome, searched for if empty",
			Value: "",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "run chrome headless",
			Value: false,
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "visitkittmp",
		},
		&cli.StringFlag{
			Name:  "loglevel",
			Usage: "debug, info, warn, error",
			Value: "info",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "seconds to wait for each visit",
			Value: 30,
		},
		&cli.StringFlag{
			Name:  "metrics",
			Usage: "address to serve prometheus metrics on, disabled if empty",
			Value: "",
		},
	}
}

// Visit cold boots the configured url and then visits each path in page
func Visit(cliCtx *cli.Context) error {
	cfg, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}

	locations, err := visitLocations(cfg)
	if err != nil {
		return err
	}

	visits := store.NewVisitStore(cfg.DataPath + "/visits")
	if err := visits.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init visit store")
		return err
	}
	defer visits.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Ctrl-C Pressed, shutting down")
		cancel()
	}()

	reg := prometheus.NewRegistry()
	metrics := session.NewMetrics(reg)
	if addr := cliCtx.String("metrics"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	l := loop.New()
	go l.Run(ctx)

	webView, release, err := newWebView(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer release()

	vctx := visitk.NewContext(ctx, cancel)
	s := session.New(vctx, webView, visits, metrics)
	delegate := newLogDelegate(len(locations))
	s.SetDelegate(delegate)

	timeout := time.Duration(cfg.VisitTimeout) * time.Second
	for i, location := range locations {
		action := visitk.ActionAdvance
		if i == 0 {
			action = visitk.ActionReplace
		}
		target := location
		l.Post(func() {
			s.Visit(target, action)
			s.CompleteNavigation()
		})

		select {
		case record := <-delegate.finished:
			log.Info().Str("visit", record.String()).Msg("visit finished")
			if record.State != visitk.VisitCompleted && i == 0 {
				return errors.Errorf("cold boot of %s %s", location, record.State)
			}
		case <-time.After(timeout):
			l.Post(s.Cancel)
			return errors.Errorf("timed out visiting %s", location)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func visitLocations(cfg *visitk.Config) ([]*url.URL, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid url")
	}

	locations := []*url.URL{base}
	for _, path := range cfg.Paths {
		ref, err := url.Parse(path)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path %s", path)
		}
		locations = append(locations, base.ResolveReference(ref))
	}
	return locations, nil
}

func newWebView(ctx context.Context, cfg *visitk.Config, l *loop.Loop) (visitk.WebView, func(), error) {
	switch cfg.Engine {
	case "", "sim":
		return sim.New(l), func() {}, nil
	case "chrome":
		leaser := chrome.NewLeaser(cfg.ChromePath)
		if cfg.Headless {
			leaser.SetHeadless()
		}
		b, err := leaser.Acquire()
		if err != nil {
			return nil, nil, err
		}
		release := func() {
			if err := leaser.Return(b); err != nil {
				log.Warn().Err(err).Msg("failed to close chrome")
			}
		}
		tab, err := chrome.NewTab(ctx, l, b)
		if err != nil {
			release()
			return nil, nil, err
		}
		return tab, release, nil
	}
	return nil, nil, errors.Errorf("unknown engine %s", cfg.Engine)
}

// logDelegate logs everything the session reports and hands finished visits
// back to the command
type logDelegate struct {
	finished chan *visitk.VisitRecord
}

func newLogDelegate(size int) *logDelegate {
	return &logDelegate{finished: make(chan *visitk.VisitRecord, size+1)}
}

func (d *logDelegate) DidProposeVisit(location *url.URL, action visitk.Action) {
	log.Info().Str("location", location.String()).Str("action", string(action)).Msg("page proposed visit")
}

func (d *logDelegate) DidStartRequest(location *url.URL) {
	log.Debug().Str("location", location.String()).Msg("request started")
}

func (d *logDelegate) DidFinishRequest(location *url.URL) {
	log.Debug().Str("location", location.String()).Msg("request finished")
}

func (d *logDelegate) DidFailRequest(location *url.URL, err error) {
	log.Error().Err(err).Str("location", location.String()).Msg("request failed")
}

func (d *logDelegate) DidFinishVisit(v *visitor.Visit) {
	select {
	case d.finished <- v.Record():
	default:
		log.Warn().Str("location", v.Location().String()).Msg("dropping finished visit")
	}
}
