package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

var (
	ingestRecursive bool
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Extract and chunk files",
	Long: `Runs files and directories through classification, extraction and
chunking, and prints what was produced. Nothing is kept after the command
exits; use it to check how Adam reads your files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output reports as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Documents == nil {
		return errors.New("document service not configured")
	}

	reports, err := ingestPaths(cmd.Context(), svc, args, ingestRecursive)
	if err != nil {
		return err
	}

	if ingestJSON {
		views := make([]domain.ReportView, len(reports))
		for i, r := range reports {
			views[i] = r.View()
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal reports: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, r := range reports {
		printReport(cmd, r)
	}
	return nil
}

// ingestPaths loads each path, a file or a directory, and returns one
// report per path. A missing file is reported as a failure, not an error.
func ingestPaths(
	ctx context.Context,
	svc *Services,
	paths []string,
	recursive bool,
) ([]*domain.IngestionReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := driving.IngestOptions{Recursive: recursive}
	if svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			opts.FileTimeout = settings.Ingest.FileTimeout
		}
	}

	reports := make([]*domain.IngestionReport, 0, len(paths))
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			report, err := svc.Documents.IngestDirectory(ctx, path, opts)
			if err != nil {
				return reports, fmt.Errorf("ingest %s: %w", path, err)
			}
			reports = append(reports, report)
			continue
		}

		report := &domain.IngestionReport{Directory: path}
		doc, err := svc.Documents.Ingest(ctx, path)
		if err != nil {
			var failure *domain.IngestionFailure
			if !errors.As(err, &failure) {
				failure = &domain.IngestionFailure{Path: path, Stage: domain.StageRead, Err: err}
			}
			report.Outcomes = append(report.Outcomes, domain.IngestionOutcome{Path: path, Failure: failure})
		} else {
			report.Outcomes = append(report.Outcomes, domain.IngestionOutcome{Path: path, Document: doc})
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func printReport(cmd *cobra.Command, report *domain.IngestionReport) {
	cmd.Printf("%s: %d loaded, %d failed\n\n", report.Directory, report.Succeeded(), report.Failed())

	for _, o := range report.Outcomes {
		if o.Document == nil {
			continue
		}
		doc := o.Document
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Path:     %s\n", doc.SourcePath)
		cmd.Printf("    Type:     %s (%s)\n", doc.MimeClass, doc.MIMEType)
		cmd.Printf("    Size:     %d bytes\n", doc.SizeBytes)
		cmd.Printf("    Chunks:   %d\n", len(doc.Chunks))
		cmd.Printf("    Modified: %s\n", doc.ModifiedAt.Format("2006-01-02 15:04:05"))
		if doc.Encoding != "" {
			cmd.Printf("    Encoding: %s\n", doc.Encoding)
		}
		cmd.Println()
	}

	for _, f := range report.View().Failures {
		cmd.Printf("  failed: %s\n", f.Message)
		if f.Hint != "" {
			cmd.Printf("    hint: %s\n", f.Hint)
		}
	}
}
