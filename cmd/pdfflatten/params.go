package main

import (
	pdfflatten "github.com/alnah/go-pdfflatten"
	"github.com/alnah/go-pdfflatten/internal/config"
)

// runParams is the fully resolved parameter set for a run.
type runParams struct {
	options pdfflatten.FlattenOptions
	outDir  string
}

// resolveParams merges library defaults, the optional config file, and
// explicit flags, in ascending precedence.
func resolveParams(flags *cliFlags, cfg *config.Config) runParams {
	opts := pdfflatten.DefaultOptions()
	outDir := defaultOutputDir

	if cfg != nil {
		if cfg.Output.Dir != "" {
			outDir = cfg.Output.Dir
		}
		if cfg.Output.Format != "" {
			opts.Format = cfg.Output.Format
		}
		if cfg.Render.DPI != 0 {
			opts.DPI = cfg.Render.DPI
		}
		if cfg.Render.JPEGQuality != 0 {
			opts.JPEGQuality = cfg.Render.JPEGQuality
		}
		if cfg.Watermark.Text != "" {
			opts.Watermark.Text = cfg.Watermark.Text
		}
		if cfg.Watermark.SizePct != 0 {
			opts.Watermark.SizePct = cfg.Watermark.SizePct
		}
		if cfg.Watermark.Opacity != 0 {
			opts.Watermark.Opacity = cfg.Watermark.Opacity
		}
		if cfg.Watermark.TilePaddingPct != 0 {
			opts.Watermark.TilePaddingPct = cfg.Watermark.TilePaddingPct
		}
		if cfg.Watermark.Tiled != nil {
			opts.Tiled = *cfg.Watermark.Tiled
		}
		if cfg.Watermark.Rotate45 {
			opts.Rotate45 = true
		}
	}

	if flags.set["out"] {
		outDir = flags.out
	}
	if flags.set["format"] {
		opts.Format = flags.format
	}
	if flags.set["dpi"] {
		opts.DPI = flags.dpi
	}
	if flags.set["quality"] {
		opts.JPEGQuality = flags.quality
	}
	if flags.set["text"] {
		opts.Watermark.Text = flags.text
	}
	if flags.set["wm-size"] {
		opts.Watermark.SizePct = flags.size
	}
	if flags.set["wm-opacity"] {
		opts.Watermark.Opacity = flags.opacity
	}
	if flags.set["wm-padding"] {
		opts.Watermark.TilePaddingPct = flags.padding
	}
	if flags.set["tiled"] {
		opts.Tiled = flags.tiled
	}
	if flags.set["rotate"] {
		opts.Rotate45 = flags.rotate
	}
	if flags.noMark {
		opts.Watermark.Text = ""
	}

	return runParams{options: opts, outDir: outDir}
}
