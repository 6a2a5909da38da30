package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/guiguit045/tailored-trainer-coach/internal"
	"github.com/guiguit045/tailored-trainer-coach/internal/config"
	"github.com/guiguit045/tailored-trainer-coach/internal/logging"
	"github.com/guiguit045/tailored-trainer-coach/pkg"
)

// set with -ldflags "-X main.version=..."
var version string

// secrets are never part of the config file.
type secrets struct {
	postgresPassword string
	redisPassword    string
	sentryDSN        string
	honeycombEnabled bool
}

func loadSecrets() secrets {
	s := secrets{
		postgresPassword: os.Getenv("TRAINER_POSTGRES_PASSWORD"),
		redisPassword:    os.Getenv("TRAINER_REDIS_PASS"),
		sentryDSN:        os.Getenv("SENTRY_DSN"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
	}

	if s.postgresPassword == "" {
		log.Warnln("postgres password not set. use TRAINER_POSTGRES_PASSWORD")
	}
	if s.redisPassword == "" {
		log.Warnln("redis password not set. use TRAINER_REDIS_PASS")
	}
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}
	if s.honeycombEnabled && os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}

	return s
}

func main() {
	fmt.Println("starting trainer service ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	runMigrations := flag.Bool("migrate", false, "apply pending database migrations before serving")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config [%s] from [%s]: %s", *env, *configPath, err)
	}

	s := loadSecrets()
	logCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled && s.sentryDSN != "",
		SentryDSN:        s.sentryDSN,
		SentryServerName: "trainer-service",
		MaxBackups:       10,
		MaxAgeDays:       30,
	})

	log.Warnf("---->> running in [%s] environment", cfg.Environment)
	log.Debugf("using port: %d, logs path: [%s]", cfg.Port, cfg.LogsPath)

	versionInfo := resolveVersion()
	log.Debugf("running version: %s", versionInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             versionInfo,
			PostgresPassword:        s.postgresPassword,
			RedisPassword:           s.redisPassword,
			HoneycombTracingEnabled: s.honeycombEnabled,
			RunMigrations:           *runMigrations,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("shutdown signal received, stopping ...")

	server.GracefulShutdown()

	logging.Flush()
	if err := logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close logs: %s\n", err)
	}
}

// resolveVersion prefers the linker-set version, then the vcs revision
// embedded by the go tool, then the git checkout the binary runs from.
func resolveVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	stdout, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		log.Tracef("failed to get last commit hash: %s", err)
		return "unknown"
	}
	return pkg.BytesToString(stdout)
}
