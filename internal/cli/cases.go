package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tansive/supporttracker/internal/common/httpclient"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const serverURLEnv = "SUPPORT_SERVER_URL"

type clientOptions struct {
	serverURL string
	language  string
}

func (o *clientOptions) client() *httpclient.Client {
	u := o.serverURL
	if u == "" {
		u = os.Getenv(serverURLEnv)
	}
	if u == "" {
		u = "http://localhost:8000"
	}
	return httpclient.NewClient(u, httpclient.ClientOptions{Language: o.language})
}

func newCasesCmd(opts *rootOptions) *cobra.Command {
	copts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Create and query support cases on a running server",
	}
	cmd.PersistentFlags().StringVar(&copts.serverURL, "server", "", "Server URL (default $"+serverURLEnv+" or http://localhost:8000)")
	cmd.PersistentFlags().StringVar(&copts.language, "lang", "", "Language of error messages (es, en)")

	cmd.AddCommand(newCasesListCmd(opts, copts))
	cmd.AddCommand(newCasesGetCmd(opts, copts))
	cmd.AddCommand(newCasesCreateCmd(opts, copts))
	return cmd
}

func newCasesListCmd(opts *rootOptions, copts *clientOptions) *cobra.Command {
	params := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List support cases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := map[string]string{}
			for name, v := range params {
				query[name] = *v
			}
			body, err := copts.client().ListCases(cmd.Context(), query)
			if err != nil {
				return err
			}
			return printBody(cmd, opts, body)
		},
	}
	for _, p := range []struct{ flag, param, usage string }{
		{"page", "page", "Page number (default 1)"},
		{"size", "size", "Items per page (default 10, max 100)"},
		{"status", "status", "Filter by status"},
		{"database", "database_name", "Filter by database name"},
		{"schema", "schema_name", "Filter by schema name"},
		{"executed-by", "executed_by", "Filter by operator"},
		{"priority", "priority", "Filter by priority"},
		{"id", "id", "Filter by case id"},
		{"start-date", "start_date", "Cases created at or after this date"},
		{"end-date", "end_date", "Cases created at or before this date"},
	} {
		params[p.param] = cmd.Flags().String(p.flag, "", p.usage)
	}
	return cmd
}

func newCasesGetCmd(opts *rootOptions, copts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <case-id>",
		Short: "Show one support case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := copts.client().GetCase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printBody(cmd, opts, body)
		},
	}
}

func newCasesCreateCmd(opts *rootOptions, copts *clientOptions) *cobra.Command {
	var file string
	fields := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log a new support case",
		Long: `Log a new support case, either from a JSON file or from flags.
Flags override the values read from the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte("{}")
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				data = b
			}
			for name, v := range fields {
				if !cmd.Flags().Changed(flagFor(name)) {
					continue
				}
				var err error
				if data, err = sjson.SetBytes(data, name, *v); err != nil {
					return fmt.Errorf("setting %s: %w", name, err)
				}
			}

			body, location, err := copts.client().CreateCase(cmd.Context(), data)
			if err != nil {
				return err
			}
			if !opts.jsonOutput {
				okLabel.Fprintf(cmd.OutOrStdout(), "created %s\n", location)
			}
			return printBody(cmd, opts, body)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the case fields")
	for name, usage := range caseFieldFlags {
		fields[name] = cmd.Flags().String(flagFor(name), "", usage)
	}
	return cmd
}

var caseFieldFlags = map[string]string{
	"title":         "Case title (max 100 characters)",
	"description":   "What was done and why (max 500 characters)",
	"database_name": "Target database",
	"schema_name":   "Target schema",
	"sql_query":     "SQL that was executed",
	"executed_by":   "Operator who ran the SQL",
	"priority":      "baja, media or alta",
}

var caseFieldFlagNames = map[string]string{
	"database_name": "database",
	"schema_name":   "schema",
	"sql_query":     "sql",
	"executed_by":   "executed-by",
}

func flagFor(field string) string {
	if f, ok := caseFieldFlagNames[field]; ok {
		return f
	}
	return field
}

func printBody(cmd *cobra.Command, opts *rootOptions, body []byte) error {
	out := pretty.Pretty(body)
	if !opts.jsonOutput && !color.NoColor {
		out = pretty.Color(out, nil)
	}
	_, err := cmd.OutOrStdout().Write(out)
	return err
}
