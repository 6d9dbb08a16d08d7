package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// defaultOutputDir is used when neither --out nor the config set one.
const defaultOutputDir = "flatten-output"

// cliFlags holds all parsed command-line flags.
type cliFlags struct {
	inputs []string // positional: files and/or directories

	config  string
	out     string
	format  string
	dpi     int
	quality int

	text     string
	size     float64
	opacity  int
	padding  float64
	tiled    bool
	rotate   bool
	noMark   bool
	workers  int
	verbose  bool
	version  bool
	showHelp bool

	// set records which flags were explicitly passed, so flag values
	// override config values only when the user typed them.
	set map[string]bool
}

// parseFlags parses args (including the program name at args[0]).
func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("pdfflatten", flag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&f.config, "config", "c", "", "YAML config file with defaults")
	fs.StringVarP(&f.out, "out", "o", "", "output directory (default \""+defaultOutputDir+"\")")
	fs.StringVarP(&f.format, "format", "f", "pdf", "export format: pdf, png, or jpeg")
	fs.IntVar(&f.dpi, "dpi", 150, "rendering resolution")
	fs.IntVarP(&f.quality, "quality", "q", 85, "JPEG quality (1-100)")

	fs.StringVarP(&f.text, "text", "t", "CONFIDENTIAL", "watermark text")
	fs.Float64Var(&f.size, "wm-size", 10, "watermark font size as % of page width")
	fs.IntVar(&f.opacity, "wm-opacity", 120, "watermark opacity (0-255)")
	fs.Float64Var(&f.padding, "wm-padding", 50, "tile padding as % of font size")
	fs.BoolVar(&f.tiled, "tiled", true, "tile the watermark across the page")
	fs.BoolVar(&f.rotate, "rotate", false, "rotate the watermark 45 degrees")
	fs.BoolVar(&f.noMark, "no-watermark", false, "disable watermarking")

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel file workers (0 = auto)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.showHelp, "help", "h", false, "show help")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: pdfflatten [flags] <input.pdf|dir>...\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	if f.showHelp {
		fs.Usage()
	}

	f.inputs = fs.Args()
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})

	return f, nil
}
