package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-handler/internal/codec"
	"github.com/ironsheep/image-handler/internal/handler"
	"github.com/ironsheep/image-handler/internal/picture"
	"github.com/ironsheep/image-handler/internal/source"
)

type readOptions struct {
	codec    string
	inWidth  int
	inHeight int
	chroma   string
	width    int
	height   int
	aspect   float64
	rawPath  string
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	var opts readOptions

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Decode an image and convert it to a raw pixel format",
		Long: "Decode an image file, convert it to the requested chroma and size, and print the resulting format.\n" +
			"Unset output fields fall back to the [output] configuration, then to the decoded picture.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			out, err := opts.outputFormat(cfg.OutputFormat())
			if err != nil {
				return err
			}

			loader := source.NewLoader(cfg.Source.MaxBytes)
			h := handler.New(codec.NewRegistry(codec.WithMaxPixels(cfg.Output.MaxPixels)),
				handler.WithLogger(logger),
				handler.WithFileReader(loader.ReadAll),
				handler.WithMaxPixels(cfg.Output.MaxPixels),
			)
			defer h.Close()

			path := args[0]
			var (
				pic    *picture.Picture
				format picture.Format
				in     picture.Format
			)
			if opts.codec != "" {
				if in, err = opts.inputFormat(nil); err != nil {
					return err
				}
				pic, format, err = h.ReadFile(path, in, out)
			} else {
				data, readErr := loader.ReadAll(path)
				if readErr != nil {
					return fmt.Errorf("%w %s: %w", handler.ErrIO, path, readErr)
				}
				if in, err = opts.inputFormat(data); err != nil {
					return err
				}
				pic, format, err = h.Read(data, in, out)
			}
			if err != nil {
				return err
			}
			defer pic.Release()

			if opts.rawPath != "" {
				if err := writePlanes(opts.rawPath, pic); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), describePicture(path, in.Chroma, pic, format))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.codec, "codec", "", "Input codec or raw chroma; detected from the file when empty")
	flags.IntVar(&opts.inWidth, "in-width", 0, "Width of raw input")
	flags.IntVar(&opts.inHeight, "in-height", 0, "Height of raw input")
	flags.StringVar(&opts.chroma, "chroma", "", "Output chroma (I420, I422, I444, GREY, RGBA)")
	flags.IntVar(&opts.width, "width", 0, "Output width; 0 keeps the decoded width")
	flags.IntVar(&opts.height, "height", 0, "Output height; 0 keeps the decoded height")
	flags.Float64Var(&opts.aspect, "aspect", 0, "Output display aspect ratio; 0 keeps the source aspect")
	flags.StringVar(&opts.rawPath, "raw", "", "Write the output planes, packed, to this file")
	return cmd
}

func (o readOptions) outputFormat(base picture.Format) (picture.Format, error) {
	out := base
	if o.chroma != "" {
		chroma, err := picture.ParseChroma(o.chroma)
		if err != nil {
			return picture.Format{}, err
		}
		if !chroma.IsRaw() {
			return picture.Format{}, fmt.Errorf("--chroma %q is not a raw pixel format", o.chroma)
		}
		out.Chroma = chroma
	}
	if o.width < 0 || o.height < 0 {
		return picture.Format{}, errors.New("--width and --height must not be negative")
	}
	if o.width > 0 {
		out.Width = o.width
	}
	if o.height > 0 {
		out.Height = o.height
	}
	out.Aspect = o.aspect
	return out, nil
}

func (o readOptions) inputFormat(data []byte) (picture.Format, error) {
	chroma, err := picture.ParseChroma(o.codec)
	if err != nil {
		return picture.Format{}, err
	}
	if chroma == "" {
		chroma = source.Sniff(data)
	}
	if chroma == "" {
		return picture.Format{}, errors.New("could not detect the image codec; pass --codec")
	}
	return picture.Format{Chroma: chroma, Width: o.inWidth, Height: o.inHeight}, nil
}

// writePlanes stores every plane back to back, the layout raw input expects.
func writePlanes(path string, pic *picture.Picture) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	for _, pl := range pic.Planes {
		if _, err := f.Write(pl.Pixels); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return f.Close()
}

func describePicture(path string, in picture.Chroma, pic *picture.Picture, format picture.Format) string {
	rows := [][]string{
		{"File", path},
		{"Input", string(in)},
		{"Chroma", string(format.Chroma)},
		{"Width", strconv.Itoa(format.Width)},
		{"Height", strconv.Itoa(format.Height)},
		{"Aspect", strconv.FormatFloat(format.Aspect, 'f', 4, 64)},
		{"Bytes", strconv.Itoa(pic.Size())},
	}
	for i, pl := range pic.Planes {
		rows = append(rows, []string{
			fmt.Sprintf("Plane %d", i),
			fmt.Sprintf("%d x %d", pl.Pitch, pl.Lines),
		})
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
