package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-gptimage/pkg/app"
)

var (
	// Global output flags only
	configFile   string
	debug        bool
	verbose      bool
	quiet        bool
	noColor      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "gptimage",
	Short: "GPT disk image builder",
	Long: `gptimage lays out GPT partitioned disk images from a partition table
description and fills each partition from its binary.

Commands:
  create      Build an image from a partition table description
  show        Dump the protective MBR, GPT headers and partition entries of an image
  generate    Turn a storage description into a partition table description`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, app.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "config file (default gptimage-config.yaml in ., ./config, $HOME/.gptimage, /etc/gptimage)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "g", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output (same as --debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored error output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
}

func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
	if noColor {
		color.NoColor = true
	}
}

// newContext builds the application context for a command. The returned cancel
// function stops listening for interrupts.
func newContext(cmd *cobra.Command) (*app.Context, context.CancelFunc) {
	ctx := app.NewContext()
	ctx.OutputFormat = outputFormat
	ctx.Verbose = debug || verbose
	ctx.Quiet = quiet
	ctx.NoColor = noColor
	ctx.Out = cmd.OutOrStdout()

	parent, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return ctx.WithContext(parent), cancel
}

// bindFlags binds config keys to the command's flags. Commands bind in PreRunE
// since several of them share keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}
