package cli

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/export"
)

const cmPerInch = 2.54

// pngInfo is what inspect reports about a PNG.
type pngInfo struct {
	Width, Height int
	Density       export.Density
	HasDensity    bool
}

// inspectCommand prints the size and embedded print density of an export.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file.png]",
		Short: "Show the pixel size and print density of a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			info, err := inspectPNG(data)
			if err != nil {
				return err
			}

			printKeyValue("File", args[0])
			printKeyValue("Pixels", fmt.Sprintf("%d × %d", info.Width, info.Height))
			if !info.HasDensity {
				printWarning("No print density embedded")
				return nil
			}
			dpi := info.Density.DPI()
			printKeyValue("Density", strconv.Itoa(dpi)+" dpi")
			if dpi > 0 {
				printKeyValue("Print size", fmt.Sprintf("%.2f × %.2f cm",
					float64(info.Width)/float64(dpi)*cmPerInch,
					float64(info.Height)/float64(dpi)*cmPerInch))
			}
			return nil
		},
	}
}

func inspectPNG(data []byte) (pngInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pngInfo{}, errors.Wrap(errors.ErrCodeImageDecode, err, "not an image")
	}
	if format != "png" {
		return pngInfo{}, errors.New(errors.ErrCodeUnsupported, "%s images carry no print density", format)
	}
	d, ok, err := export.ReadDensity(data)
	if err != nil {
		return pngInfo{}, err
	}
	return pngInfo{Width: cfg.Width, Height: cfg.Height, Density: d, HasDensity: ok}, nil
}
