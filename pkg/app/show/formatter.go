package show

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// FormatOutput writes the response in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable writes the protective record, header and partition entries as text
func formatTable(w io.Writer, response *Response) error {
	fmt.Fprintf(w, "Image: %s (%s, %d-byte blocks)\n\n", response.Image,
		humanize.IBytes(response.ImageSize), response.BlockSize)

	p := response.Protective
	fmt.Fprintf(w, "Protective MBR\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Boot\t0x%02X\n", p.Boot)
	fmt.Fprintf(tw, "  OS type\t0x%02X\n", p.OSType)
	fmt.Fprintf(tw, "  CHS start\t0x%06X\n", p.CHSStart)
	fmt.Fprintf(tw, "  CHS end\t0x%06X\n", p.CHSEnd)
	fmt.Fprintf(tw, "  LBA start\t%d\n", p.StartingLBA)
	fmt.Fprintf(tw, "  LBA size\t%d\n", p.SizeLBA)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nGPT header\n")
	if err := writeHeader(w, response.Header); err != nil {
		return err
	}

	if response.Backup != nil {
		fmt.Fprintf(w, "\nBackup GPT header\n")
		if err := writeHeader(w, *response.Backup); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n")
	if len(response.Partitions) == 0 {
		fmt.Fprintf(w, "No partitions found.\n")
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SLOT\tNAME\tTYPE\tUUID\tFIRST LBA\tLAST LBA\tATTRIBUTES\tSIZE\n")
	fmt.Fprintf(tw, "----\t----\t----\t----\t---------\t--------\t----------\t----\n")
	for _, part := range response.Partitions {
		typeName := part.Type
		if typeName == "" {
			typeName = part.TypeGUID
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t0x%X\t%s\n",
			part.Slot, part.Name, typeName, part.UniqueGUID,
			part.FirstLBA, part.LastLBA, part.Attributes, humanize.IBytes(part.Size))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d partitions", len(response.Partitions))
	if response.Verified {
		fmt.Fprintf(w, ", checksums verified")
	}
	fmt.Fprintf(w, "\n")

	return nil
}

func writeHeader(w io.Writer, h HeaderInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Signature\t%s\n", h.Signature)
	fmt.Fprintf(tw, "  Revision\t%s\n", h.Revision)
	fmt.Fprintf(tw, "  Header size\t%d\n", h.HeaderSize)
	fmt.Fprintf(tw, "  Header CRC32\t0x%08X\n", h.HeaderCRC32)
	fmt.Fprintf(tw, "  Current LBA\t%d\n", h.CurrentLBA)
	fmt.Fprintf(tw, "  Backup LBA\t%d\n", h.BackupLBA)
	fmt.Fprintf(tw, "  First usable LBA\t%d\n", h.FirstUsableLBA)
	fmt.Fprintf(tw, "  Last usable LBA\t%d\n", h.LastUsableLBA)
	fmt.Fprintf(tw, "  Disk UUID\t%s\n", h.DiskGUID)
	fmt.Fprintf(tw, "  Entry array LBA\t%d\n", h.EntryLBA)
	fmt.Fprintf(tw, "  Entries\t%d x %d bytes\n", h.EntryCount, h.EntrySize)
	fmt.Fprintf(tw, "  Entry array CRC32\t0x%08X\n", h.EntryArrayCRC32)
	return tw.Flush()
}

// formatJSON formats the response as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats the response as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}
