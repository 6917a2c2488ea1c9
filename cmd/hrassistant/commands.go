package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/garyjia/hr-assistant/internal/container"
	"github.com/garyjia/hr-assistant/internal/ingest"
	httpapi "github.com/garyjia/hr-assistant/internal/interfaces/http"
)

// healthInterval is how often serve checks the database while running
const healthInterval = time.Minute

var askMode string

// askCmd answers a single utterance and exits
var askCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Answer one question or execute one command",
	Long: `Routes the text the same way the interactive prompt does and prints the reply.

Use --as to skip classification:
  auto    - classify the text (default)
  query   - answer it as a question
  command - execute it as a command

Example:
  hrassistant ask "siapa manajer budi?"
  hrassistant ask --as command "ajukan cuti tahunan untuk Budi besok"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// importCmd loads seed data
var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import seed data from a CSV directory or an XLSX workbook",
	Long: `Loads employees, leave balances, leave requests and performance reviews.

A directory must contain employees.csv and may contain leave_balances.csv,
leave_requests.csv and performance_reviews.csv. A .xlsx workbook is read
sheet by sheet, with sheets named after those files. Everything is loaded
in one transaction.

Without a path, seed.workbook or else seed.dir from the configuration is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

// exportCmd writes the leave balance workbook
var exportCmd = &cobra.Command{
	Use:   "export [output.xlsx]",
	Short: "Export leave balances to an XLSX workbook",
	Long: `Writes one row per employee with their remaining annual, sick and maternity leave.

Without a path the workbook is saved under export.dir with a timestamped name,
the same way scheduled snapshots are.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "as", "auto", "routing: auto, query or command")
}

func runAsk(cmd *cobra.Command, args []string) error {
	answer, err := answerFunc(askMode)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	reply := answer(cmd.Context(), a.container.Services(), strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

type answerer func(ctx context.Context, services *container.ServiceBundle, text string) string

func answerFunc(mode string) (answerer, error) {
	switch mode {
	case "auto", "":
		return func(ctx context.Context, s *container.ServiceBundle, text string) string {
			return s.Assistant.Handle(ctx, text)
		}, nil
	case "query":
		return func(ctx context.Context, s *container.ServiceBundle, text string) string {
			return s.Queries.Answer(ctx, text)
		}, nil
	case "command":
		return func(ctx context.Context, s *container.ServiceBundle, text string) string {
			return s.Actions.Execute(ctx, text)
		}, nil
	}
	return nil, fmt.Errorf("unknown --as value %q (want auto, query or command)", mode)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	services := a.container.Services()
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         a.cfg.Server.Host,
		Port:         a.cfg.Server.Port,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}, httpapi.Deps{
		Assistant: services.Assistant,
		Queries:   services.Queries,
		Actions:   services.Actions,
		Employees: a.container.Store(),
		Exporter:  services.Exporter,
		Activity:  services.Activity,
	}, a.container.ServiceLogger())

	if err := a.container.StartWorkers(cmd.Context()); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Start(ctx)
	})
	g.Go(func() error {
		return monitorHealth(ctx, a.container, a.logger)
	})

	if err := g.Wait(); err != nil && !isInterrupted(err) {
		return err
	}
	return nil
}

// monitorHealth logs component health until ctx is done
func monitorHealth(ctx context.Context, c *container.Container, logger *zap.Logger) error {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			health := c.Health()
			if health.Overall {
				continue
			}
			for name, component := range health.Components {
				if !component.Healthy {
					logger.Warn("Component unhealthy",
						zap.String("component", name),
						zap.String("message", component.Message))
				}
			}
		}
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	path := a.cfg.Seed.Dir
	if a.cfg.Seed.Workbook != "" {
		path = a.cfg.Seed.Workbook
	}
	if len(args) == 1 {
		path = args[0]
	}

	result, err := importSeed(cmd.Context(), a.container.Services().Importer, path)
	if err != nil {
		return err
	}

	printImportResult(cmd.OutOrStdout(), path, result)
	return nil
}

func importSeed(ctx context.Context, importer *ingest.Importer, path string) (*ingest.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.ImportWorkbook(ctx, path)
	}
	return importer.ImportDir(ctx, path)
}

func printImportResult(w io.Writer, path string, result *ingest.Result) {
	fmt.Fprintln(w, titleStyle.Render("Imported "+path))
	for _, ds := range ingest.Datasets {
		fmt.Fprintf(w, "  %-20s %d\n", ds, result.Counts[ds])
	}
	fmt.Fprintf(w, "  %-20s %d\n", "total", result.Total())
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 0 {
		path, err := a.container.Snapshots().Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported leave balances to %s\n", path)
		return nil
	}

	out := args[0]
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}

	n, err := a.container.Services().Exporter.ExportLeaveBalances(cmd.Context(), f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported leave balances of %d employees to %s\n", n, out)
	return nil
}
