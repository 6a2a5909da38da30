// Package main runs the progression MCP server over stdio.
// The same tools are mounted on the HTTP service at /mcp.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"

	"github.com/guiguit045/tailored-trainer-coach/internal/config"
	"github.com/guiguit045/tailored-trainer-coach/internal/db"
	"github.com/guiguit045/tailored-trainer-coach/internal/logging"
	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
	progressionmcp "github.com/guiguit045/tailored-trainer-coach/internal/progression/mcp"
	"github.com/guiguit045/tailored-trainer-coach/internal/streak"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

type sessionsStore interface {
	RecentSessions(ctx context.Context, exerciseName string, since time.Time, limit int) ([]workouts.ExerciseSession, error)
	CompletedWorkoutDates(ctx context.Context) ([]time.Time, error)
}

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	useSQLite := flag.Bool("sqlite", false, "read the embedded SQLite store (sqlite_path) instead of PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// stdout carries the MCP protocol
	logging.Setup(logging.LoggerSetupParams{
		LogToStderr: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store sessionsStore
	if *useSQLite {
		sqliteRepo, err := workouts.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite store: %v", err)
		}
		defer func() {
			if err := sqliteRepo.Close(); err != nil {
				log.Errorf("close sqlite store: %s", err)
			}
		}()
		store = sqliteRepo
	} else {
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     cfg.PostgresHost,
			DBPort:     cfg.PostgresPort,
			DBUser:     cfg.PostgresUser,
			DBPassword: os.Getenv("TRAINER_POSTGRES_PASSWORD"),
			DBName:     cfg.PostgresDBName,
		})
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer dbPool.Close()
		store = workouts.NewRepo(dbPool)
	}

	engine := progression.NewEngine(store).
		WithLookback(cfg.PerformanceLookbackWeeks, cfg.PlateauLookbackWeeks)
	server := progressionmcp.NewServer(engine, streak.NewService(store, cfg.WeeklyWorkoutTarget))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %s", err)
	}
}
