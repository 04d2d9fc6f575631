package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/example/go-walign/internal/alignment"
	"github.com/example/go-walign/internal/artifact"
	"github.com/example/go-walign/internal/corpus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newAlignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "align",
		Short: "Print Viterbi alignments for a corpus using a trained model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if cfg.Paths.Input == "" {
				return fmt.Errorf("--input is required for align")
			}
			if cfg.Paths.Model == "" {
				return fmt.Errorf("--model (or --output) is required for align")
			}

			return runAlign(appFs, cfg.Paths.Model, cfg.Paths.Input, cmd.OutOrStdout())
		},
	}
}

func runAlign(fs afero.Fs, modelPrefix, input string, w io.Writer) error {
	bundle, err := artifact.NewStore(fs, modelPrefix).LoadBundle()
	if err != nil {
		return err
	}
	fSize, eSize := bundle.Source.Size(), bundle.Target.Size()

	var c *corpus.Corpus
	err = artifact.ReadFile(fs, input, func(r io.Reader) (err error) {
		c, err = corpus.LoadWith(r, bundle.Source, bundle.Target)
		return err
	})
	if err != nil {
		return err
	}
	slog.Info("corpus loaded",
		"path", input,
		"pairs", len(c.Pairs),
		"unseen_source_words", c.Source.Size()-fSize,
		"unseen_target_words", c.Target.Size()-eSize,
	)

	_, err = alignment.AlignAll(bundle.Model, c.Pairs).WriteTo(w)
	return err
}
