package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms"
	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/render"
	"github.com/goliatone/go-biforms/pkg/renderers/html"
)

type renderFlags struct {
	formPath   string
	values     string
	errors     string
	output     string
	themePath  string
	variant    string
	validate   bool
	rendererID string
}

func newRenderCmd(a *app) *cobra.Command {
	var fl renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a form as HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.loadForm(fl.formPath)
			if err != nil {
				return err
			}
			opts, err := a.renderOptions(fl)
			if err != nil {
				return err
			}
			if fl.validate {
				if opts.Diagnostics, err = a.validate(cmd.Context(), f); err != nil {
					return err
				}
			}

			registry, err := biforms.NewRegistry(a.logger)
			if err != nil {
				return err
			}
			out, err := registry.Render(cmd.Context(), fl.rendererID, f, opts)
			if err != nil {
				return err
			}
			return a.write(fl.output, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&fl.formPath, flagForm, "", "form document (.json, .yaml)")
	flags.StringVar(&fl.values, "values", "", "field values to prefill (.json, .yaml)")
	flags.StringVar(&fl.errors, flagErrors, "", "error messages keyed by field path (.json, .yaml)")
	flags.StringVarP(&fl.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&fl.themePath, "theme", "", "theme manifest (.json, .yaml)")
	flags.StringVar(&fl.variant, "variant", "", "theme variant, such as light or dark")
	flags.BoolVar(&fl.validate, "validate", false, "fetch diagnostics from the language service first")
	flags.StringVar(&fl.rendererID, "renderer", html.Name, "renderer name")
	return cmd
}

func (a *app) renderOptions(fl renderFlags) (render.RenderOptions, error) {
	var opts render.RenderOptions
	if fl.values != "" {
		values, err := biforms.LoadValues(fl.values)
		if err != nil {
			return opts, err
		}
		opts.Values = values
	}
	if fl.errors != "" {
		payload, err := biforms.LoadErrors(fl.errors)
		if err != nil {
			return opts, err
		}
		opts.Errors = payload
	}
	if fl.themePath != "" {
		manifest, err := biforms.LoadThemeManifest(fl.themePath)
		if err != nil {
			return opts, err
		}
		opts.Theme = render.ThemeConfig(manifest, fl.variant)
	}
	return opts, nil
}

// validate opens a short-lived session and fetches diagnostics for every
// expression field.
func (a *app) validate(ctx context.Context, f model.Form) (map[string][]protocol.Diagnostic, error) {
	s, err := a.openSession(ctx, f)
	if err != nil {
		return nil, err
	}
	defer s.close(ctx)
	return s.inst.ValidateAll(ctx)
}

func (a *app) write(path string, data []byte) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("output written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
