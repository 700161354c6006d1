package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCompleteCmd(a *app) *cobra.Command {
	var (
		formPath string
		field    string
		text     string
		plain    bool
	)
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Print completions for an expression with the cursor at its end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if field == "" {
				return fmt.Errorf("--field is required")
			}
			f, err := a.loadForm(formPath)
			if err != nil {
				return err
			}
			if _, ok := f.Field(field); !ok {
				return fmt.Errorf("form has no field %q", field)
			}

			ctx := cmd.Context()
			s, err := a.openSession(ctx, f)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			items := s.inst.Suggest(ctx, field, text)
			if plain {
				for _, item := range items {
					fmt.Fprintln(a.stdout, item.Value)
				}
				return nil
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
	cmd.Flags().StringVar(&formPath, flagForm, "", "form document (.json, .yaml)")
	cmd.Flags().StringVar(&field, "field", "", "field key")
	cmd.Flags().StringVar(&text, "text", "", "expression text before the cursor")
	cmd.Flags().BoolVar(&plain, "plain", false, "print one completion value per line")
	return cmd
}
