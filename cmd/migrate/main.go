// migrate manages the database schema.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate status
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ErlanBelekov/jobbee-api/internal/infrastructure/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply, roll back or inspect the jobbee schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")

	withMigrator := func(run func(cmd *cobra.Command, m *postgres.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			pool, err := postgres.NewPool(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			m, err := postgres.NewMigrator(pool)
			if err != nil {
				return err
			}
			defer m.Close()
			return run(cmd, m)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
				n, err := m.Up(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("applied %d migration(s)\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
				if err := m.Down(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether each is applied",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range statuses {
					applied := "pending"
					if !s.AppliedAt.IsZero() {
						applied = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					cmd.Printf("%-6d %-30s %s\n", s.Source.Version, s.Source.Path, applied)
				}
				return nil
			}),
		},
	)
	return root
}
