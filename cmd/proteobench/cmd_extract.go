package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract/engines"
	"github.com/Proteobench/Proteobench/internal/params"
)

func extractCmd(a *app) *cobra.Command {
	var (
		engine         string
		asJSON         bool
		defaultsPath   string
		configDefaults bool
	)
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the parameter record of one search-engine output file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := engines.Default(a.logger).Resolve(args[0], engine)
			if err != nil {
				return err
			}
			rec, err := ex.Extract(args[0])
			if err != nil {
				return err
			}
			// unset fields stay unset unless defaults are asked for
			if configDefaults && defaultsPath == "" {
				defaultsPath = a.cfg.Params.FieldsPath
				if defaultsPath == "" {
					return common.NewAppError("CONFIG_ERROR", "--config-defaults needs params.fields_path",
						common.ErrConfigurationMissing)
				}
			}
			if defaultsPath != "" {
				defaults, err := params.LoadDefaults(defaultsPath, a.logger)
				if err != nil {
					return err
				}
				rec.FillFrom(defaults)
			}
			if err := params.Validate(rec); err != nil {
				a.logger.Warn("extract.validate.failed", "path", args[0], "error", err)
			}
			return printRecord(cmd.OutOrStdout(), rec, asJSON)
		},
	}
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "Extractor name; detected from content when empty")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	cmd.Flags().StringVar(&defaultsPath, "defaults", "", "Field-definition JSON filling unset fields")
	cmd.Flags().BoolVar(&configDefaults, "config-defaults", false, "Fill unset fields from params.fields_path")
	return cmd
}

func defaultsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "defaults <fields.json>",
		Short: "Show the record a field-definition document yields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := params.LoadDefaults(args[0], a.logger)
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), rec, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}

func enginesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the supported search engines",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range engines.Default(a.logger).Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func printRecord(w io.Writer, rec *params.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, fv := range rec.Values() {
		fmt.Fprintf(tw, "%s\t%s\n", fv.Name, params.FormatValue(fv.Value))
	}
	return tw.Flush()
}
