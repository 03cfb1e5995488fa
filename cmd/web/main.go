package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/habitapp/internal/envstruct"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/flightrecorder"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/logging"
	"github.com/myrjola/habitapp/internal/sqlite"
	"github.com/myrjola/habitapp/internal/tracker"
	"github.com/myrjola/habitapp/internal/webauthnhandler"
	"github.com/yuin/goldmark"
)

type application struct {
	logger          *slog.Logger
	webAuthnHandler *webauthnhandler.WebAuthnHandler
	sessionManager  *scs.SessionManager
	templateFS      fs.FS
	tracker         *tracker.Service
	exporter        *sqlite.Database
	markdown        goldmark.Markdown
	// defaultLocation decides "today" for callers without a timezone cookie.
	defaultLocation *time.Location
	// flightRecorder is nil when trace capture is disabled.
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"HABITAPP_ADDR" envDefault:"localhost:8081"`
	// FQDN is the fully qualified domain name of the server used for WebAuthn Relying Party configuration.
	FQDN string `env:"HABITAPP_FQDN" envDefault:"localhost"`
	// FlyAppName is the name of the Fly application. It's used to override the FQDN.
	FlyAppName string `env:"FLY_APP_NAME" envDefault:""`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"HABITAPP_SQLITE_URL" envDefault:"./habitapp.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"HABITAPP_TEMPLATE_PATH" envDefault:""`
	// Timezone is the IANA zone deciding the current day when the browser has not told us its own.
	Timezone string `env:"HABITAPP_TIMEZONE" envDefault:"UTC"`
	// FitnessStreak is either "weekdays" or "weekly_goal".
	FitnessStreak string `env:"HABITAPP_FITNESS_STREAK" envDefault:"weekdays"`
	// SessionLifetime is how long a sign-in lasts.
	SessionLifetime time.Duration `env:"HABITAPP_SESSION_LIFETIME" envDefault:"12h"`
	// TracesDirectory receives execution traces of timed out requests. Empty disables the flight recorder.
	TracesDirectory string `env:"HABITAPP_TRACES_DIRECTORY" envDefault:""`
}

type logConfig struct {
	// LogFormat is "text" or "json".
	LogFormat string `env:"HABITAPP_LOG_FORMAT" envDefault:"text"`
	// LogLevel is a slog level such as "debug" or "info".
	LogLevel string `env:"HABITAPP_LOG_LEVEL" envDefault:"debug"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	strategy, err := habits.ParseFitnessStrategy(cfg.FitnessStreak)
	if err != nil {
		return errors.Wrap(err, "fitness streak config")
	}
	defaultLocation, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return errors.Wrap(err, "load default timezone", slog.String("timezone", cfg.Timezone))
	}

	htmlTemplatePath, err := resolveAndVerifyTemplatePath(cfg.TemplatePath)
	if err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db failed", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db, cfg.SessionLifetime)

	fqdn := cfg.FQDN
	if cfg.FlyAppName != "" {
		fqdn = cfg.FlyAppName + ".fly.dev"
	}
	webAuthnHandler, err := webauthnhandler.New(cfg.Addr, fqdn, logger, sessionManager, db)
	if err != nil {
		return errors.Wrap(err, "new webauthn handler")
	}

	recorder, err := startFlightRecorder(ctx, logger, cfg.TracesDirectory)
	if err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	if recorder != nil {
		defer recorder.Stop(context.WithoutCancel(ctx))
	}

	app := application{
		logger:          logger,
		webAuthnHandler: webAuthnHandler,
		sessionManager:  sessionManager,
		templateFS:      os.DirFS(htmlTemplatePath),
		tracker:         tracker.NewService(db, logger, strategy),
		exporter:        db,
		markdown:        newMarkdown(),
		defaultLocation: defaultLocation,
		flightRecorder:  recorder,
	}

	handler, err := app.routes()
	if err != nil {
		return errors.Wrap(err, "routes")
	}
	if err = app.configureAndStartServer(ctx, cfg.Addr, handler); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// startFlightRecorder returns nil without a traces directory.
func startFlightRecorder(ctx context.Context, logger *slog.Logger, dir string) (*flightrecorder.Recorder, error) {
	if dir == "" {
		return nil, nil //nolint:nilnil // disabled.
	}
	recorder, err := flightrecorder.New(logger, flightrecorder.Config{Dir: dir, MinAge: 0, MaxBytes: 0, Cooldown: 0})
	if err != nil {
		return nil, errors.Wrap(err, "new flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "start")
	}
	return recorder, nil
}

func initializeSessionManager(dbs *sqlite.Database, lifetime time.Duration) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = lifetime
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func newLogger(lookupEnv func(string) (string, bool)) (*slog.Logger, error) {
	var cfg logConfig
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return nil, errors.Wrap(err, "populate log config")
	}
	handler, err := logging.NewHandler(os.Stdout, logging.Format(cfg.LogFormat), cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "new log handler")
	}
	return slog.New(handler), nil
}

func main() {
	ctx := context.Background()
	logger, err := newLogger(os.LookupEnv)
	if err != nil {
		slog.Default().LogAttrs(ctx, slog.LevelError, "failure configuring logging", errors.SlogError(err))
		os.Exit(1)
	}
	if err = run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
