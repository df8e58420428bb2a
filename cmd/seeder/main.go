// Command seeder fills the database with fake users and activity logs for
// local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/opencampus-hq/timereport/internal/config"
	"github.com/opencampus-hq/timereport/internal/repository"
	"github.com/opencampus-hq/timereport/internal/seeder"
)

var (
	cfgFile string
	users   int
	days    int
	seed    int64
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed the time report database",
	Long: `seeder generates fake users and realistic activity logs so the report
pipeline can be exercised locally.

Examples:
  # Seed with defaults (10 users, 30 days of history)
  seeder run

  # Reproducible large dataset
  seeder run --users 100 --days 90 --seed 42`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and insert users and activity logs",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	runCmd.Flags().IntVar(&users, "users", 10, "number of users to generate")
	runCmd.Flags().IntVar(&days, "days", 30, "days of history to generate")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	rootCmd.AddCommand(runCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	connString := cfg.Database.DSN()

	m, err := migrate.New(cfg.Database.Migrations, connString)
	if err != nil {
		return fmt.Errorf("initialize migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo, err := repository.NewPostgresRepository(ctx, connString)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	gen := seeder.New(seeder.Options{
		Users:   users,
		Days:    days,
		Targets: cfg.Report.AllowedTargets,
		Seed:    seed,
	})

	totalEvents := 0
	for _, user := range gen.Users() {
		if err := repo.CreateUser(ctx, &user); err != nil {
			return fmt.Errorf("create user %d: %w", user.ID, err)
		}

		events := gen.EventsFor(&user)
		if err := repo.InsertLogEvents(ctx, user.ID, events); err != nil {
			return fmt.Errorf("insert events for user %d: %w", user.ID, err)
		}
		totalEvents += len(events)
		fmt.Printf("seeded %s (%d events)\n", user.Username, len(events))
	}

	fmt.Printf("done: %d users, %d events over %d days\n", users, totalEvents, days)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
