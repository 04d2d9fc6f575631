package main

import (
	"errors"
	"fmt"

	"github.com/example/go-walign/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the artifacts of a trained model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if cfg.Paths.Model == "" {
				return fmt.Errorf("--model (or --output) is required for doctor")
			}

			result := doctor.Run(doctor.Config{Fs: appFs, Prefix: cfg.Paths.Model}, cmd.OutOrStdout())
			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")

			return nil
		},
	}
}
