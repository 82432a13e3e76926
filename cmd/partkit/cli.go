package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/partkit/pkg/kernel/sdfx"
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Config is everything parsed from the command line.
type Config struct {
	Command   string
	Path      string
	LogLevel  string
	LogFormat string

	// rescale
	Part    string
	From    float64
	To      float64
	Passive bool

	// group
	Group   int
	Editing bool

	// probe
	Origin string
	Dir    string

	// mesh
	Cells int
	Out   string
}

const usage = `
partkit - inspect and rescale part assemblies.

Usage:
  partkit [options] show FILE
  partkit [options] validate FILE
  partkit [options] rescale -part NAME -to SCALE [-from SCALE] [-passive] FILE
  partkit [options] group -group ID [-editing] FILE
  partkit [options] probe -origin X,Y,Z -dir X,Y,Z FILE
  partkit [options] mesh [-cells N] [-out MESHES.json] FILE

FILE is a .pk program, a .cfg part config or an .hcl part config.

Options:
`

// parseArgs processes command-line arguments. It returns the Config, whether
// the program should exit cleanly, or an ExitError.
func parseArgs(args []string, output io.Writer) (*Config, bool, error) {
	global := flag.NewFlagSet("partkit", flag.ContinueOnError)
	global.SetOutput(output)
	global.Usage = func() {
		fmt.Fprint(output, usage)
		global.PrintDefaults()
	}
	logLevel := global.String("log-level", "warn", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	logFormat := global.String("log-format", "text", "Log output format: 'text' or 'json'.")

	if err := global.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if global.NArg() == 0 {
		global.Usage()
		return nil, true, nil
	}

	cfg := &Config{
		Command:   global.Arg(0),
		LogLevel:  strings.ToLower(*logLevel),
		LogFormat: strings.ToLower(*logFormat),
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	sub := flag.NewFlagSet("partkit "+cfg.Command, flag.ContinueOnError)
	sub.SetOutput(output)
	switch cfg.Command {
	case "show", "validate":
	case "rescale":
		sub.StringVar(&cfg.Part, "part", "", "Name of the part to rescale.")
		sub.Float64Var(&cfg.From, "from", 0, "Previous scale. Defaults to the part's recorded scale.")
		sub.Float64Var(&cfg.To, "to", 0, "New scale.")
		sub.BoolVar(&cfg.Passive, "passive", false, "Update nodes only; do not move attached parts.")
	case "group":
		sub.IntVar(&cfg.Group, "group", 0, "Group id to act on.")
		sub.BoolVar(&cfg.Editing, "editing", false, "Search as an assembly being edited instead of a running vessel.")
	case "probe":
		sub.StringVar(&cfg.Origin, "origin", "0,0,0", "Ray origin.")
		sub.StringVar(&cfg.Dir, "dir", "0,0,-1", "Ray direction.")
	case "mesh":
		sub.IntVar(&cfg.Cells, "cells", sdfx.DefaultCells, "Marching cubes cells along the longest axis.")
		sub.StringVar(&cfg.Out, "out", "", "Write the meshes as JSON to this file.")
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", cfg.Command)}
	}

	if err := sub.Parse(global.Args()[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if sub.NArg() != 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("%s: expected exactly one FILE argument", cfg.Command)}
	}
	cfg.Path = sub.Arg(0)

	if cfg.Command == "rescale" {
		if cfg.Part == "" {
			return nil, false, &ExitError{Code: 2, Message: "rescale: -part is required"}
		}
		if cfg.To <= 0 || cfg.From < 0 {
			return nil, false, &ExitError{Code: 2, Message: "rescale: scales must be positive"}
		}
	}
	if cfg.Command == "mesh" && cfg.Cells <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "mesh: -cells must be positive"}
	}
	return cfg, false, nil
}
