package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-gptimage/pkg/app/generate"
)

var (
	storagePath  string
	overridePath string
	tableOutPath string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a partition table description from a storage description",
	Long: `Turn a JSON storage description into the partition table description
read by "gptimage create". An override file is merged on top of the storage
description when it exists. STORAGE_BASE_NAME replaces the storage device name.

Examples:
  # Write partition.tbl next to the storage description
  gptimage generate --storage storage.json --override storage-override.json --out partition.tbl

  # Print the description for another device
  STORAGE_BASE_NAME=sda gptimage generate --storage storage.json --out -`,

	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindEnv("storage_base_name", "STORAGE_BASE_NAME"); err != nil {
			return err
		}
		return bindFlags(cmd.Flags(), map[string]string{"storage_base_name": "base-name"})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&storagePath, "storage", "s", "", "storage description (JSON)")
	generateCmd.Flags().StringVar(&overridePath, "override", "", "override merged on top of the storage description (JSON)")
	generateCmd.Flags().StringVar(&tableOutPath, "out", "partition.tbl", `partition table description to write ("-" for stdout)`)
	generateCmd.Flags().String("base-name", "", "storage device name (default storage.base_name)")

	_ = generateCmd.MarkFlagRequired("storage")
}

func runGenerate(cmd *cobra.Command) error {
	ctx, cancel := newContext(cmd)
	defer cancel()

	response, err := generate.Handle(ctx, &generate.Request{
		StoragePath:  storagePath,
		OverridePath: overridePath,
		OutputPath:   tableOutPath,
		BaseName:     viper.GetString("storage_base_name"),
	})
	if err != nil {
		return err
	}

	if response.Output == generate.StdoutPath {
		return nil
	}

	return generate.FormatOutput(ctx.Out, response, ctx.OutputFormat)
}
