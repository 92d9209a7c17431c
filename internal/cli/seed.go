package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yourusername/mindquest/internal/config"
	"github.com/yourusername/mindquest/internal/domain/repository"
	pgRepo "github.com/yourusername/mindquest/internal/repository/postgres"
	"github.com/yourusername/mindquest/internal/seed"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/pkg/database"
)

// Ошибки подтверждения загрузки данных
var (
	ErrSeedNotConfirmed = errors.New("seed deletes all quizzes, questions and answers; re-run with --yes to confirm")
	ErrSeedInProduction = errors.New("refusing to seed a production database without --allow-production")
)

type seedOptions struct {
	yes             bool
	allowProduction bool
}

// NewSeedCmd пересоздаёт демонстрационные викторины
func NewSeedCmd(configPath *string) *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Delete all quiz content and load the demo quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForOperator(*configPath)
			if err != nil {
				return err
			}
			if err := checkSeedAllowed(cfg, opts); err != nil {
				return err
			}

			db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Database.Debug)
			if err != nil {
				return err
			}
			sqlDB, err := database.GetSQLDB(db)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			return runSeed(cmd.Context(), cmd.OutOrStdout(), pgRepo.NewStore(db))
		},
	}
	cmd.Flags().BoolVar(&opts.yes, "yes", false, "confirm that all existing quiz content will be deleted")
	cmd.Flags().BoolVar(&opts.allowProduction, "allow-production", false, "allow seeding when app.env is production")
	return cmd
}

// checkSeedAllowed требует явного подтверждения, а в production - отдельного флага
func checkSeedAllowed(cfg *config.Config, opts seedOptions) error {
	if !opts.yes {
		return ErrSeedNotConfirmed
	}
	if cfg.App.IsProduction() && !opts.allowProduction {
		return ErrSeedInProduction
	}
	return nil
}

func runSeed(ctx context.Context, out io.Writer, transactor repository.Transactor) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := service.NewSeedService(transactor, seed.Fixtures).ResetAndPopulate(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d quizzes, %d questions, %d answers\n", report.Quizzes, report.Questions, report.Answers)
	fmt.Fprintln(out, "Successfully populated the database")
	return nil
}
