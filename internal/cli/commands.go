// Package cli implements the supporttracker command line. serve and migrate
// work against the database; cases talks to a running server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/tansive/supporttracker/internal/common/logtrace"
	"github.com/tansive/supporttracker/internal/supportsrv/config"
	"github.com/tansive/supporttracker/internal/supportsrv/server"
)

// DefaultConfigFile is read when neither --config nor SUPPORT_CONFIG is set.
const DefaultConfigFile = "supporttracker.conf"

const configEnv = config.EnvPrefix + "CONFIG"

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

type rootOptions struct {
	configFile string
	jsonOutput bool
	cfg        *config.ConfigParam
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "supporttracker [command] [flags]",
		Short: "Support case tracker - logs manually executed database remediation actions",
		Long: `supporttracker serves the support case API and manages its database schema.

Examples:
  # Apply migrations and start the server
  supporttracker serve --migrate --config supporttracker.conf

  # Show the schema version
  supporttracker migrate status`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			return opts.loadConfig()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to the configuration file (default "+DefaultConfigFile+")")
	cmd.PersistentFlags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output in JSON format")

	cmd.AddCommand(newVersionCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newCasesCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := newRootCmd()
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrAlreadyHandled) {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "cases" {
			return true
		}
	}
	return false
}

func (o *rootOptions) loadConfig() error {
	path := o.configFile
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		path = DefaultConfigFile
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	logtrace.InitLogger(cfg.Log.Level)
	o.cfg = cfg
	return nil
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server and API version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":    server.ServerVersion,
					"apiVersion": server.ApiVersion,
				})
			}
			cmd.Printf("supporttracker %s (api %s)\n", server.ServerVersion, server.ApiVersion)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
