package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
)

var errHasErrors = errors.New("expression errors found")

func newDiagnoseCmd(a *app) *cobra.Command {
	var (
		formPath string
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Validate every expression field of a form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.loadForm(formPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := a.openSession(ctx, f)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			diags, err := s.inst.ValidateAll(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(diags); err != nil {
				return err
			}
			if strict {
				if n := countErrors(diags); n > 0 {
					return fmt.Errorf("%w: %d", errHasErrors, n)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formPath, flagForm, "", "form document (.json, .yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any error diagnostic is reported")
	return cmd
}

func countErrors(diags map[string][]protocol.Diagnostic) int {
	n := 0
	for _, list := range diags {
		for _, d := range list {
			if d.Severity == protocol.DiagnosticSeverityError {
				n++
			}
		}
	}
	return n
}
