// SPDX-License-Identifier: Unlicense OR MIT

// Command compileshaders compiles HLSL shaders with glslangValidator and
// dxc. Run compileshaders -h for usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/muesli/termenv"

	"fluent.dev/shaderc/internal/shaderc"
	"fluent.dev/shaderc/internal/watch"
)

type options struct {
	cfg           shaderc.Config
	watch         bool
	verbose       bool
	printCommands bool
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// errUsage marks errors that warrant the usage hint.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		printError(stderr, err)
		fmt.Fprintln(stderr, "run 'compileshaders -h' for usage")
		return 2
	case err != nil:
		// Already reported by the flag package.
		return 2
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := build(ctx, opts, stdout, log); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("compileshaders", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), mainUsage)
	}
	opts := &options{cfg: shaderc.DefaultConfig()}
	cfg := &opts.cfg
	var shaders stringList
	configFile := fs.String("config", "", "TOML file with compiler settings")
	fs.StringVar(&cfg.OutDir, "outdir", "", "root directory of the compiled shaders")
	fs.Var(&cfg.Bytecodes, "bytecodes", "bytecodes to produce (spirv, dxil)")
	fs.Var(&cfg.Bytecodes, "bytecode", "alias for -bytecodes")
	fs.Var(&shaders, "shader", "shader source file")
	fs.IntVar(&cfg.Jobs, "j", 1, "number of shaders to compile in parallel")
	fs.BoolVar(&cfg.Reflect, "reflect", false, "write SPIR-V reflection data")
	fs.BoolVar(&opts.watch, "watch", false, "recompile shaders when they change")
	fs.BoolVar(&opts.printCommands, "x", false, "print the commands")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")

	// Arguments may be interleaved with flags. Bytecode names among them
	// extend -bytecodes, anything else is a shader.
	for rest := args; ; {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		if b, err := shaderc.ParseBytecode(rest[0]); err == nil {
			cfg.Bytecodes.Add(b)
		} else {
			shaders = append(shaders, rest[0])
		}
		rest = rest[1:]
	}
	cfg.Shaders = shaders

	if *configFile != "" {
		if err := cfg.OpenFile(*configFile); err != nil {
			return nil, fmt.Errorf("%w: config: %w", errUsage, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return opts, nil
}

func build(ctx context.Context, opts *options, stdout io.Writer, log *slog.Logger) error {
	runner := &shaderc.ExecRunner{
		PrintCommands: opts.printCommands,
		Commands:      stdout,
		Log:           log,
	}
	d := shaderc.NewDispatcher(&opts.cfg, runner, log)
	_, err := d.Build(ctx, opts.cfg.Shaders)
	if !opts.watch {
		return err
	}
	if err != nil {
		log.Error("build failed", "err", err)
	}
	w, err := watch.New(opts.cfg.Shaders, func(ctx context.Context, shader string) error {
		_, err := d.Dispatch(ctx, shader)
		return err
	}, log)
	if err != nil {
		return err
	}
	log.Info("watching shaders", "count", len(opts.cfg.Shaders))
	return w.Run(ctx)
}

func printError(w io.Writer, err error) {
	out := termenv.NewOutput(w)
	msg := fmt.Sprintf("compileshaders: %v", strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
	fmt.Fprintln(w, out.String(msg).Foreground(termenv.ANSIRed))
}
