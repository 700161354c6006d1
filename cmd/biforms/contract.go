package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-biforms"
	"github.com/goliatone/go-biforms/pkg/contract"
	"github.com/goliatone/go-biforms/pkg/render"
)

func newContractCmd(a *app) *cobra.Command {
	var (
		operation  string
		rendererID string
		output     string
		remote     bool
	)
	cmd := &cobra.Command{
		Use:   "contract <location>",
		Short: "List the resources of an OpenAPI document or build one as a resource form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loadOpts []contract.LoadOption
			if remote {
				loadOpts = append(loadOpts,
					contract.WithHTTPClient(http.DefaultClient),
					contract.WithTimeout(a.cfg.Service.Timeout.Std()),
				)
			}
			resources, err := biforms.LoadContract(cmd.Context(), args[0], loadOpts...)
			if err != nil {
				return err
			}
			if operation == "" {
				return listResources(a, resources)
			}

			res, ok := findResource(resources, operation)
			if !ok {
				return fmt.Errorf("operation %q not found", operation)
			}
			f, err := res.Form()
			if err != nil {
				return err
			}
			f.FilePath = a.cfg.FilePath

			if rendererID == "" {
				data, err := json.MarshalIndent(f, "", "  ")
				if err != nil {
					return err
				}
				return a.write(output, append(data, '\n'))
			}
			registry, err := biforms.NewRegistry(a.logger)
			if err != nil {
				return err
			}
			out, err := registry.Render(cmd.Context(), rendererID, f, render.RenderOptions{})
			if err != nil {
				return err
			}
			return a.write(output, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&operation, "operation", "", "operation ID to build as a form")
	flags.StringVar(&rendererID, "renderer", "", "render the form instead of printing it as JSON")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	flags.BoolVar(&remote, "remote", false, "allow http and https locations")
	return cmd
}

func listResources(a *app, resources []contract.Resource) error {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tOPERATION\tRETURNS")
	for _, res := range resources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Method, res.ResourcePath(), res.OperationID, res.ReturnType())
	}
	return w.Flush()
}

func findResource(resources []contract.Resource, operation string) (contract.Resource, bool) {
	for _, res := range resources {
		if res.OperationID == operation {
			return res, true
		}
	}
	return contract.Resource{}, false
}
