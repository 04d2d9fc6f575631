package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/go-walign/internal/alignment"
	"github.com/example/go-walign/internal/artifact"
	"github.com/example/go-walign/internal/config"
	"github.com/example/go-walign/internal/corpus"
	"github.com/example/go-walign/internal/ibm1"
	"github.com/example/go-walign/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	var reportFormat string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train IBM Model 1 on a fast-align corpus and write Viterbi alignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if cfg.Paths.Input == "" {
				return fmt.Errorf("--input is required for train")
			}
			if cfg.Paths.Output == "" {
				return fmt.Errorf("--output is required for train")
			}
			if err := report.ValidateFormat(reportFormat); err != nil {
				return err
			}

			return runTrain(appFs, trainOptions{
				Input:      cfg.Paths.Input,
				Output:     cfg.Paths.Output,
				Train:      cfg.Train,
				Report:     reportFormat,
				ReportSink: cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVar(&reportFormat, "report", report.FormatNone, "Epoch report on stdout: none|table|json")

	return cmd
}

type trainOptions struct {
	Input      string
	Output     string
	Train      config.TrainConfig
	Report     string
	ReportSink io.Writer
}

func runTrain(fs afero.Fs, opts trainOptions) error {
	c, err := loadCorpus(fs, opts.Input)
	if err != nil {
		return err
	}
	slog.Info("corpus loaded",
		"path", opts.Input,
		"pairs", len(c.Pairs),
		"source_vocab", c.Source.Size(),
		"target_vocab", c.Target.Size(),
	)

	workers := config.ResolveWorkers(opts.Train.Workers)

	var epochs report.Collector
	start := time.Now()
	model := ibm1.Train(c, ibm1.TrainOptions{
		Iterations: opts.Train.Iterations,
		Workers:    workers,
		Observer: func(s ibm1.EpochStats) {
			slog.Info("epoch complete",
				"epoch", s.Epoch,
				"nll", s.NLL,
				"duration_ms", s.Duration.Milliseconds(),
			)
			epochs.Observe(s)
		},
	})
	slog.Info("training finished",
		"iterations", opts.Train.Iterations,
		"workers", workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	store := artifact.NewStore(fs, opts.Output)
	err = store.SaveBundle(artifact.Bundle{Source: c.Source, Target: c.Target, Model: model})
	if err != nil {
		return err
	}
	if err := store.Write(artifact.ExtViterbi, alignment.AlignAll(model, c.Pairs)); err != nil {
		return err
	}
	slog.Info("artifacts written", "prefix", opts.Output)

	if opts.ReportSink != nil {
		return report.Write(opts.ReportSink, opts.Report, epochs.Epochs)
	}
	return nil
}

func loadCorpus(fs afero.Fs, path string) (*corpus.Corpus, error) {
	var c *corpus.Corpus
	err := artifact.ReadFile(fs, path, func(r io.Reader) (err error) {
		c, err = corpus.Load(r)
		return err
	})
	return c, err
}
