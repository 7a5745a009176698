package main

import "flag"

// Options holds CLI options for the sender.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	FPS        int
	Replay     string
	Format     string
	Frames     int
}

// ParseFlags parses CLI flags from args and returns Options. Zero values
// mean "use the configuration file".
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("vmcbridge-send", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.Host, "host", "", "Receiver host (overrides config)")
	fs.IntVar(&opts.Port, "port", 0, "Receiver port (overrides config)")
	fs.IntVar(&opts.FPS, "fps", 0, "Frame pacing (overrides config)")
	fs.StringVar(&opts.Replay, "replay", "", "Replay a recorded snapshot stream instead of the synthetic signal")
	fs.StringVar(&opts.Format, "format", "", "Record format for -replay: json or cbor (overrides config)")
	fs.IntVar(&opts.Frames, "frames", 0, "Stop after this many frames (0 = run until interrupted)")
	_ = fs.Parse(args)
	return opts
}
