package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-gptimage/internal/device"
	"github.com/deploymenttheory/go-gptimage/internal/types"
	"github.com/deploymenttheory/go-gptimage/pkg/app/show"
)

var showCmd = &cobra.Command{
	Use:   "show <image>",
	Short: "Dump the partitioning of a GPT image",
	Long: `Decode and print the protective MBR, the GPT header and every used
partition entry of an image.

Examples:
  # Dump an image in the working directory
  gptimage show gpt.img --path $OUT

  # Check checksums and backup copies, print as JSON
  gptimage show gpt.img --strict -o json`,

	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), map[string]string{
			"working_dir": "path",
			"block_size":  "block",
			"strict":      "strict",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("path", "p", "", "directory the image path is relative to (default $OUT)")
	showCmd.Flags().Uint64P("block", "b", types.DefaultBlockSize, "block size in bytes")
	showCmd.Flags().Bool("strict", false, "verify checksums and backup copies")
}

func runShow(cmd *cobra.Command, imagePath string) error {
	ctx, cancel := newContext(cmd)
	defer cancel()

	cfg, err := device.LoadConfig()
	if err != nil {
		return err
	}

	response, err := show.Handle(ctx, &show.Request{
		ImagePath:  imagePath,
		WorkingDir: cfg.WorkingDir,
		BlockSize:  cfg.BlockSize,
		Strict:     cfg.Strict,
	})
	if err != nil {
		return err
	}

	return show.FormatOutput(ctx.Out, response, ctx.OutputFormat)
}
