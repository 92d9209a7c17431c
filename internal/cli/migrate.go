package cli

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/yourusername/mindquest/internal/config"
	"github.com/yourusername/mindquest/pkg/database"
)

// NewMigrateCmd управляет миграциями схемы
func NewMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLDB(*configPath, func(sqlDB *sql.DB, cfg *config.Config) error {
				return database.MigrateSQL(sqlDB, cfg.Database.MigrationsPath)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the migration version and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			return withSQLDB(*configPath, func(sqlDB *sql.DB, cfg *config.Config) error {
				if err := database.ForceVersion(sqlDB, cfg.Database.MigrationsPath, version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Success! Dirty state cleaned, version set to %d.\n", version)
				return nil
			})
		},
	})
	return cmd
}

// parseVersion разбирает номер версии миграции; -1 означает "нет версии"
func parseVersion(s string) (int, error) {
	version, err := strconv.Atoi(s)
	if err != nil || version < -1 {
		return 0, fmt.Errorf("invalid migration version %q", s)
	}
	return version, nil
}

// withSQLDB открывает *sql.DB через драйвер lib/pq и закрывает его после fn
func withSQLDB(configPath string, fn func(sqlDB *sql.DB, cfg *config.Config) error) error {
	cfg, err := config.LoadForOperator(configPath)
	if err != nil {
		return err
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("[Migrate] Ошибка закрытия соединения: %v", err)
		}
	}()

	return fn(sqlDB, cfg)
}
