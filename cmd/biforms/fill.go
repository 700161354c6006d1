package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-biforms"
	"github.com/goliatone/go-biforms/pkg/render"
	"github.com/goliatone/go-biforms/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		formPath string
		values   string
		errs     string
		format   string
		output   string
		offline  bool
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a form interactively and print the collected values",
		Long: `fill prompts for every editable field. When a language service is
configured, expression prompts offer live completions, diagnostics are shown
before each expression and the recorded imports are attached to the output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch tui.OutputFormat(format) {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
			f, err := a.loadForm(formPath)
			if err != nil {
				return err
			}
			var opts render.RenderOptions
			if values != "" {
				if opts.Values, err = biforms.LoadValues(values); err != nil {
					return err
				}
			}

			if errs != "" {
				if opts.Errors, err = biforms.LoadErrors(errs); err != nil {
					return err
				}
			}

			tuiOpts := []tui.Option{
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithPromptDriver(a.driver),
			}
			ctx := cmd.Context()
			if !offline && a.cfg.HasService() {
				s, err := a.openSession(ctx, f)
				if err != nil {
					return err
				}
				defer s.close(ctx)

				if opts.Diagnostics, err = s.inst.ValidateAll(ctx); err != nil {
					return err
				}
				tuiOpts = append(tuiOpts,
					tui.WithSuggester(s.inst),
					tui.WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
						return s.inst.Imports().Attach(values), nil
					}),
				)
			}

			renderer, err := tui.New(tuiOpts...)
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, f, opts)
			if err != nil {
				return err
			}
			return a.write(output, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&formPath, flagForm, "", "form document (.json, .yaml)")
	flags.StringVar(&values, "values", "", "initial field values (.json, .yaml)")
	flags.StringVar(&errs, flagErrors, "", "error messages from a failed save to show first (.json, .yaml)")
	flags.StringVar(&format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	flags.BoolVar(&offline, "offline", false, "do not connect to the language service")
	return cmd
}
