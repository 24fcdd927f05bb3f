package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"variate-server/internal/config"
	"variate-server/internal/jwt"
	"variate-server/internal/mux"
	"variate-server/pkg/checkpoint"
	"variate-server/pkg/db"
	"variate-server/pkg/session"
	"variate-server/pkg/source"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	jwt.LoadSecret()

	cfg := config.Instance()
	if cfg.Store == config.StorePostgres {
		db.Migrate()
	}

	store, err := checkpoint.NewStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not open checkpoint store")
	}

	var sourceOpts []source.Option
	if cfg.Source.Tape != "" {
		sourceOpts = append(sourceOpts, source.WithTapeFile(cfg.Source.Tape))
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	})

	registry := session.NewRegistry(sourceOpts...)
	defaults := session.Options{Source: cfg.Source.Name}
	if cfg.Source.Seed != nil {
		seed := *cfg.Source.Seed
		defaults.Seed = &seed
	}
	registry.SetDefaults(defaults)
	registry.SetMaxSessions(cfg.Session.MaxSessions)
	if cfg.Session.IdleMinutes > 0 {
		idle := time.Duration(cfg.Session.IdleMinutes) * time.Minute
		registry.StartSweeper(context.Background(), idle, idle/4)
	}

	m := mux.NewMux(Version, registry, store, cfg.MaxBatch)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(m)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).WithField("store", cfg.Store).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
