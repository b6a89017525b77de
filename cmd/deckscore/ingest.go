package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/service"
	"github.com/deckscore/deckscore/internal/treatment"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract and translate deck text",
		Long: `Extract the text of every deck in the decks directory, translate it to
English when it is written in another language, and cache the normalized
result for vectorization.

Decks that already have a cached translation are skipped, so rerunning
after dropping in new files only processes the new ones. Decks that
cannot be read are recorded with placeholder text rather than aborting
the run.

Examples:
  deckscore ingest                          # Process new decks
  deckscore ingest --no-progress            # Quiet output for cron
  deckscore ingest --pdftotext /usr/bin/pdftotext`,
		RunE: runIngest,
	}

	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	cmd.Flags().String("pdftotext", "", "Path to the pdftotext binary (default: looked up on PATH)")

	_ = viper.BindPFlag("ingest.no_progress", cmd.Flags().Lookup("no-progress"))
	_ = viper.BindPFlag("ingest.pdftotext", cmd.Flags().Lookup("pdftotext"))

	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	store, err := openStore()
	if err != nil {
		return err
	}

	cfg := treatment.Config{
		Store:     store,
		Extractor: &treatment.PDFExtractor{Binary: viper.GetString("ingest.pdftotext")},
		Retry: service.RetryOptions{
			MaxAttempts: viper.GetInt("translate.max_attempts"),
		},
	}
	if command := viper.GetString("translate.command"); command != "" {
		cfg.Translator = &treatment.CommandTranslator{
			Command: command,
			Args:    viper.GetStringSlice("translate.args"),
		}
	}
	if !viper.GetBool("ingest.no_progress") {
		cfg.Progress = os.Stdout
	}

	ingestor, err := treatment.NewIngestor(cfg)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler()
	ctx := handler.Watch(cmd.Context())

	stats, err := ingestor.Run(ctx)
	if handler.WasInterrupted() {
		fmt.Println(cli.InterruptNotice("deckscore ingest"))
		return err
	}
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("  • Total decks: %d\n", stats.Total) +
		fmt.Sprintf("  • Processed: %d\n", stats.Processed) +
		fmt.Sprintf("  • Skipped (cached): %d\n", stats.Skipped) +
		fmt.Sprintf("  • Translated: %d\n", stats.Translated) +
		fmt.Sprintf("  • Failed: %d\n", stats.Failed) +
		fmt.Sprintf("  • Time taken: %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Println(cli.RenderBox("Ingest Complete", summary))

	return nil
}
