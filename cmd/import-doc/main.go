// Command import-doc bulk-loads portfolio documents into the vector store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/josinaldojr/portfolio-chat/internal/app"
	"github.com/josinaldojr/portfolio-chat/internal/config"
	applog "github.com/josinaldojr/portfolio-chat/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import-doc",
		Short: "Import portfolio documents into the vector store",
		Long: `Import portfolio documents into the vector store.

Files (.md, .txt, .html, .pdf, .docx, .xlsx) under --path are read recursively.
Pages under --base-url are crawled on the same host, up to --max-pages.
Text is split into chunks on line boundaries; each chunk becomes one entry.

Store and model settings come from the same environment as the API
(DATABASE_URL, LLM_PROVIDER, OPENAI_API_KEY, ...), with .env loaded first.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.path == "" && opts.baseURL == "" {
				return fmt.Errorf("use at least one of --path or --base-url")
			}
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "directory of local files to import")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "URL to crawl (same host only)")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 50, "page limit for the crawl")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", defaultChunkSize, "maximum chunk size in bytes")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "chunks embedded in parallel")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "extract and chunk without storing")

	return cmd
}

type importOptions struct {
	path        string
	baseURL     string
	maxPages    int
	chunkSize   int
	concurrency int
	dryRun      bool
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	ctx := cmd.Context()

	// A dry run needs no store or model credentials.
	cfg, err := config.Load()
	if err != nil && !opts.dryRun {
		return fmt.Errorf("load config: %w", err)
	}
	logger := applog.New("info", applog.FormatPretty)
	if cfg != nil {
		logger = applog.New(cfg.LogLevel, cfg.LogFormat)
	}

	var sink entrySink = dryRunSink{}
	if !opts.dryRun {
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		sink = a.Service
	}

	imp := newImporter(sink, logger, opts.chunkSize, opts.concurrency)

	if opts.path != "" {
		if err := imp.importFiles(ctx, opts.path); err != nil {
			return fmt.Errorf("import files: %w", err)
		}
	}
	if opts.baseURL != "" {
		if err := imp.importSite(ctx, opts.baseURL, opts.maxPages); err != nil {
			return fmt.Errorf("import site: %w", err)
		}
	}

	logger.Info().
		Int64("documents", imp.documents.Load()).
		Int64("chunks", imp.chunks.Load()).
		Bool("dry_run", opts.dryRun).
		Msg("import finished")
	return nil
}
