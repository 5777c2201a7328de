package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"docpipe/internal/chunk"
	"docpipe/internal/config"
	"docpipe/internal/domain"
	"docpipe/internal/extract"
	"docpipe/internal/repository"
	"docpipe/internal/service"
	"docpipe/internal/tokens"
	"docpipe/pkg/logger"
)

// app is the pipeline the CLI runs against: same limits as the server,
// in-memory storage only.
type app struct {
	cfg      domain.Config
	meter    *tokens.Meter
	pipeline *service.Pipeline
}

func newApp(cfg domain.Config, pricingPath string, verbose bool) (*app, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	appLogger := logger.NewLoggerWithWriter(level, os.Stderr).Named("cli")

	var table *tokens.PricingTable
	if pricingPath != "" {
		var err error
		if table, err = tokens.LoadPricingFile(pricingPath); err != nil {
			return nil, fmt.Errorf("load pricing file: %w", err)
		}
	}
	meter := tokens.NewMeter(table, appLogger)

	extractor := extract.New(extract.Config{
		Timeout:       cfg.GetExtractionTimeout(),
		MaxTextLength: cfg.GetMaxTextLength(),
		PDFMaxPages:   cfg.GetPDFMaxPages(),
		XLSXMaxRows:   cfg.GetXLSXMaxRows(),
		XLSXMaxSheets: cfg.GetXLSXMaxSheets(),
	}, appLogger)
	chunker := chunk.New(meter, chunk.WithOverlapTokens(cfg.GetChunkOverlapTokens()))
	store := repository.NewTieredStore(repository.NewMemoryStore(), nil, cfg.GetCacheTTL(), appLogger)

	pipeline := service.NewPipeline(extractor, meter, chunker, store, service.PipelineConfig{
		MaxFileSize:              cfg.GetMaxFileSize(),
		MaxConcurrentExtractions: 1,
		DefaultModel:             cfg.GetDefaultModel(),
		DefaultMaxTokens:         cfg.GetDefaultMaxTokensPerChunk(),
		StoreTTL:                 cfg.GetStoreTTL(),
	}, appLogger)

	return &app{cfg: cfg, meter: meter, pipeline: pipeline}, nil
}

func newRootCmd() *cobra.Command {
	var (
		pricingPath string
		verbose     bool
	)

	root := &cobra.Command{
		Use:           "docpipe",
		Short:         "Extract, meter and chunk documents for LLM context windows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&pricingPath, "pricing", os.Getenv("PRICING_FILE"), "TOML pricing table (defaults to built-in profiles)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline activity to stderr")

	build := func() (*app, error) {
		return newApp(config.NewConfig(), pricingPath, verbose)
	}
	root.AddCommand(processCmd(build), modelsCmd(build))
	return root
}

func processCmd(build func() (*app, error)) *cobra.Command {
	var (
		model     string
		maxTokens int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Extract a document and split it into chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			result, err := a.pipeline.Process(context.Background(), service.ProcessRequest{
				Data:              data,
				FileName:          filepath.Base(path),
				Model:             model,
				MaxTokensPerChunk: maxTokens,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			printResult(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "target model (defaults to DEFAULT_MODEL)")
	cmd.Flags().IntVarP(&maxTokens, "max-tokens", "t", 0, "token budget per chunk (defaults to DEFAULT_MAX_TOKENS_PER_CHUNK)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func modelsCmd(build func() (*app, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model profiles used for token metering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}

			models := a.meter.Models()
			if asJSON {
				return writeJSON(cmd, models)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tFAMILY\tCONTEXT\tINPUT/1K\tOUTPUT/1K")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.5f\t%.5f\n", m.ID, m.Family, m.ContextLimit, m.InputCostPer1K, m.OutputCostPer1K)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print models as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func printResult(cmd *cobra.Command, r *domain.ProcessingResult) {
	out := cmd.OutOrStdout()
	a := r.TokenAnalysis
	fmt.Fprintf(out, "File:      %s (%s, %d bytes)\n", r.OriginalFileName, r.MimeType, r.FileSize)
	fmt.Fprintf(out, "Hash:      %s\n", r.FileHash)
	fmt.Fprintf(out, "Model:     %s (context %d)\n", r.Model, a.ContextLimit)
	fmt.Fprintf(out, "Tokens:    %d (%.2f%% of context, est. cost $%.4f)\n", a.TotalTokens, a.UtilizationPercent, a.EstimatedCost)
	fmt.Fprintf(out, "Approach:  %s, %d chunks of at most %d tokens\n\n", r.Processing.RecommendedApproach, r.Processing.ChunkCount, r.MaxTokensPerChunk)
	for _, c := range r.Chunks {
		flag := ""
		if !c.FitsInContext {
			flag = " [exceeds context]"
		}
		fmt.Fprintf(out, "  [%d/%d] %d tokens%s\n", c.Index, c.TotalChunks, c.TokenCount, flag)
		fmt.Fprintf(out, "        %s\n", c.Preview)
	}
}
