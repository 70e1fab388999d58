package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nuvie/records/internal/domain/patient"
	"github.com/nuvie/records/internal/importer"
	"github.com/nuvie/records/internal/normalize"
	"github.com/nuvie/records/internal/platform/db"
)

type importOptions struct {
	batchSize  int
	vocabulary string
	sheet      string
}

func importCmd() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Import patients from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Rows per transaction (defaults to IMPORT_BATCH_SIZE)")
	cmd.Flags().StringVar(&opts.vocabulary, "vocabulary", "", "YAML file with extra gender/marital/race codes")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from an XLSX file (defaults to the first)")
	return cmd
}

func runImport(cmd *cobra.Command, path string, opts importOptions) error {
	cfg, logger, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}

	batchSize := opts.batchSize
	if batchSize <= 0 {
		batchSize = cfg.ImportBatchSize
	}

	src, err := importer.OpenSource(path, opts.sheet)
	if err != nil {
		return err
	}
	vocab, err := normalize.LoadVocabulary(opts.vocabulary)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	store := importer.NewPGStore(pool, patient.NewRepo(pool))
	imp := importer.New(store, normalize.New(vocab, logger), batchSize, logger)

	out, err := imp.Run(ctx, src)
	if out != nil {
		if werr := importer.WriteReport(cmd.OutOrStdout(), src.Name(), out); werr != nil {
			logger.Error().Err(werr).Msg("could not write report")
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("import aborted")
		return err
	}
	return nil
}
