package main

import (
	"fmt"
	"os"
	"sort"

	"oohdesk/adapters/excel"
	"oohdesk/adapters/postgres"
	"oohdesk/adapters/storage"
	"oohdesk/app"
	"oohdesk/domain/core"
	"oohdesk/domain/importer"
	"oohdesk/internal"
	"oohdesk/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "importctl",
		Short: "Bulk-import OOH inventory spreadsheets from the command line",
	}

	rootCmd.AddCommand(
		newInspectCmd(),
		newCommitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newInspectCmd parses a spreadsheet offline and prints the suggested
// mapping plus the validation report, without touching the database.
func newInspectCmd() *cobra.Command {
	var maxBytes int64

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Parse a spreadsheet and report mapping suggestions and validation issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := excel.NewDataReader(maxBytes)
			sheet, err := reader.ReadFile(args[0])
			if err != nil {
				return err
			}

			session := importer.NewSession(1, "inspect")
			if err := session.SetData(sheet.Headers, sheet.Rows); err != nil {
				return err
			}
			if err := session.ApplyMapping(importer.SuggestMapping(sheet.Headers)); err != nil {
				return err
			}

			printReport(session)
			return nil
		},
	}

	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 5*1024*1024, "upload size cap in bytes")
	return cmd
}

// newCommitCmd runs the full pipeline against the configured database:
// parse, auto-map, validate, duplicate-check, and batch insert.
func newCommitCmd() *cobra.Command {
	var exhibitorID int64
	var exhibitorName string

	cmd := &cobra.Command{
		Use:   "commit [file]",
		Short: "Validate a spreadsheet and persist its rows as inventory points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err == nil {
				fmt.Fprintln(os.Stderr, "loaded .env")
			}
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			db, err := sqlx.Connect("postgres", appConfig.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}

			logger := internal.NewDefaultLogger()
			reader := excel.NewDataReader(appConfig.Import.MaxUploadBytes)
			points := postgres.NewPointRepository(db)
			images := storage.NewLocalImageStore(db, appConfig.Import.ImagesDir)
			imports := app.NewImportService(reader, points, images, logger)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			session, err := imports.CreateSession(core.ExhibitorID(exhibitorID), exhibitorName, f, args[0], info.Size())
			if err != nil {
				return err
			}

			printReport(session)
			if !session.CanProceed() {
				return fmt.Errorf("spreadsheet has blocking issues, nothing was imported")
			}

			result, err := imports.Commit(cmd.Context(), session.ID, nil)
			if err != nil {
				return err
			}

			fmt.Printf("imported %d rows (%d point IDs)\n", result.RowsCommitted, len(result.PointIDs))
			return nil
		},
	}

	cmd.Flags().Int64Var(&exhibitorID, "exhibitor", 0, "exhibitor ID owning the imported points (required)")
	cmd.Flags().StringVar(&exhibitorName, "exhibitor-name", "", "exhibitor display name")
	_ = cmd.MarkFlagRequired("exhibitor")
	return cmd
}

func printReport(session *importer.Session) {
	fmt.Printf("rows: %d, columns: %d\n", len(session.Rows), len(session.Headers))

	snapshot := session.Mapping.Snapshot()
	columns := make([]int, 0, len(snapshot))
	for col := range snapshot {
		columns = append(columns, col)
	}
	sort.Ints(columns)

	fmt.Println("mapping:")
	for _, col := range columns {
		fmt.Printf("  [%d] %-30s -> %s\n", col, session.Headers[col], snapshot[col])
	}
	if missing := session.Mapping.MissingRequired(); len(missing) > 0 {
		fmt.Printf("missing required fields: %v\n", missing)
	}

	counts := session.Counts()
	fmt.Printf("validation: %d valid, %d warnings, %d errors\n", counts.Valid, counts.Warning, counts.Error)
	for _, issue := range session.Validation.Issues() {
		fmt.Printf("  %s row %d col %d: %s\n", issue.Severity, issue.Row, issue.Column, issue.Message)
	}
}
