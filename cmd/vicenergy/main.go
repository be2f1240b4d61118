package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "modernc.org/sqlite"

	"github.com/lox/vicenergy/internal/api"
	"github.com/lox/vicenergy/internal/banner"
	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/layout"
	"github.com/lox/vicenergy/internal/session"
	"github.com/lox/vicenergy/internal/store"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name='env-file',default='.env',help='Path to .env file.'"`

	Data          string        `help:"Dataset location: a CSV path, file://, http(s):// or ftp:// URL." env:"VICENERGY_DATA" default:"data/energy.csv"`
	Port          int           `help:"HTTP server port." env:"VICENERGY_PORT" default:"7777"`
	DB            string        `name:"db" help:"SQLite database for the record table and aggregate views." env:"VICENERGY_DB" default:":memory:"`
	ImageDir      string        `help:"Directory for cached banner images." env:"VICENERGY_IMAGE_DIR" default:"data/images"`
	IntroImageURL string        `name:"intro-image-url" help:"Intro banner image to fetch and cache." env:"VICENERGY_INTRO_IMAGE_URL" default:"${intro_image_url}"`
	SessionTTL    time.Duration `name:"session-ttl" help:"Drop selection state idle for longer than this." env:"VICENERGY_SESSION_TTL" default:"12h"`
	OpenAIKey     string        `name:"openai-key" help:"Enables generated banner images." env:"OPENAI_API_KEY"`
	LogLevel      string        `help:"Log level (debug, info, warn, error)." env:"VICENERGY_LOG_LEVEL" default:"info"`
	Dev           bool          `help:"Human readable development logging."`
	Check         bool          `help:"Load and validate the dataset, then exit."`
}

func newLogger(level string, dev bool) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("vicenergy"),
		kong.Description("Victoria energy demand dashboard."),
		kong.Vars{"intro_image_url": layout.DefaultIntroImageURL},
	)

	log, err := newLogger(cli.LogLevel, cli.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalw("open database", "db", cli.DB, "err", err)
	}
	defer db.Close()
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	st := store.New(db, log)
	if err := st.Migrate(); err != nil {
		log.Fatalw("migrate", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ds, err := dataset.Load(ctx, cli.Data, st, log)
	if err != nil {
		log.Fatalw("load dataset", "source", cli.Data, "err", err)
	}
	if cli.Check {
		log.Infow("dataset ok", "records", len(ds.Records), "years", ds.Years())
		return
	}

	var gen *banner.Generator
	if cli.OpenAIKey != "" {
		if gen, err = banner.NewGenerator(cli.OpenAIKey); err != nil {
			log.Warnw("banner generation disabled", "err", err)
		}
	} else {
		log.Infow("banner generation disabled", "reason", "OPENAI_API_KEY not set")
	}

	server := api.NewServer(api.Options{
		Store:    st,
		Dataset:  ds,
		Page:     layout.New(ds, "/intro-image"),
		Sessions: session.NewManager(ds, cli.SessionTTL),
		Banner: banner.New(banner.Config{
			Dir:       cli.ImageDir,
			URL:       cli.IntroImageURL,
			MaxAge:    7 * 24 * time.Hour,
			Generator: gen,
		}, log),
		Port: strconv.Itoa(cli.Port),
		Log:  log,
	})

	log.Infow("starting server", "port", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalw("server", "err", err)
	}
}
