package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-gptimage/internal/device"
	"github.com/deploymenttheory/go-gptimage/internal/types"
	"github.com/deploymenttheory/go-gptimage/pkg/app/create"
)

var (
	createBinaries map[string]string
	createShow     bool
)

var createCmd = &cobra.Command{
	Use:   "create <image>",
	Short: "Build a GPT image from a partition table description",
	Long: `Build a GPT disk image: protective MBR, primary and backup headers and
partition entry arrays, and every partition filled from its binary.

Binaries are looked up in the working directory. "none" leaves a partition
zero-filled, "dummy.img" formats an empty filesystem with make_ext4fs and
"system.img" is expanded with simg2img before copying. Both tools are run from
$ANDROID_HOST_OUT/bin.

Examples:
  # Build a 2 GiB image from $OUT/partition.tbl
  gptimage create gpt.img

  # Build a 4 GiB image with 4096-byte blocks and a custom boot image
  gptimage create gpt.img --len 4 --block 4096 --boot boot-debug.img

  # Fill a partition that has no dedicated flag
  gptimage create gpt.img --binary vendor=vendor.img --show`,

	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		keys := map[string]string{
			"working_dir":  "path",
			"table":        "table",
			"block_size":   "block",
			"image_gib":    "len",
			"host_out_dir": "host-out",
			"strict":       "strict",
			"table_length": "table-length",
			"entry_size":   "entry-size",
		}
		for label := range types.DefaultAndroidBinaries {
			keys["binaries."+strings.ToLower(label)] = label
		}
		return bindFlags(cmd.Flags(), keys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	flags := createCmd.Flags()
	flags.StringP("path", "p", "", "working directory holding the table and binaries (default $OUT)")
	flags.StringP("table", "t", "partition.tbl", "partition table description")
	flags.Uint64P("block", "b", types.DefaultBlockSize, "block size in bytes")
	flags.Uint64P("len", "l", types.DefaultImageGiB, "image length in GiB")
	flags.String("host-out", "", "Android host output directory holding bin/make_ext4fs and bin/simg2img (default $ANDROID_HOST_OUT)")
	flags.Uint32("table-length", types.GPTTableLength, "number of partition entries in the table")
	flags.Uint32("entry-size", types.GPTEntrySize, "size of one partition entry in bytes")
	flags.Bool("strict", false, "verify checksums and backup copies when reading the image back")
	flags.BoolVar(&createShow, "show", false, "dump the image layout after creating it")
	flags.StringToStringVar(&createBinaries, "binary", nil, "binary for any partition label (label=file)")

	labels := make([]string, 0, len(types.DefaultAndroidBinaries))
	for label := range types.DefaultAndroidBinaries {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		flags.String(label, types.DefaultAndroidBinaries[label], fmt.Sprintf("binary for the %s partition", label))
	}
}

func runCreate(cmd *cobra.Command, imagePath string) error {
	ctx, cancel := newContext(cmd)
	defer cancel()

	cfg, err := device.LoadConfig()
	if err != nil {
		return err
	}

	binaries := cfg.Binaries
	for label, binary := range createBinaries {
		binaries[strings.ToLower(label)] = binary
	}

	request := &create.Request{
		ImagePath:  imagePath,
		WorkingDir: cfg.WorkingDir,
		TablePath:  cfg.Table,
		BlockSize:  cfg.BlockSize,
		ImageSize:  cfg.ImageSize(),
		Table:      cfg.TableLayout(),
		Binaries:   binaries,
		HostOutDir: cfg.HostOutDir,
		Strict:     cfg.Strict,
		Show:       createShow,
	}

	response, err := create.Handle(ctx, request)
	if err != nil {
		return err
	}

	return create.FormatOutput(ctx.Out, response, ctx.OutputFormat)
}
