package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yourusername/mindquest/internal/config"
	"github.com/yourusername/mindquest/internal/domain/repository"
	"github.com/yourusername/mindquest/internal/export"
	pgRepo "github.com/yourusername/mindquest/internal/repository/postgres"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/pkg/database"
)

// NewExportCmd выгружает ключ ответов всех викторин в XLSX или CSV
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the answer key of all quizzes (.xlsx or .csv)",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.FormatFromPath(out)
			if err != nil {
				return err
			}

			cfg, err := config.LoadForOperator(*configPath)
			if err != nil {
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

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := runExport(cmd.Context(), f, format, pgRepo.NewStore(db)); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Answer key written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "answer_key.xlsx", "output file (.xlsx or .csv)")
	return cmd
}

func runExport(ctx context.Context, w io.Writer, format export.Format, store repository.QuizStore) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := service.NewExportService(store).AnswerKey(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, format, rows)
}
