// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Result describes a compiled shader binary.
type Result struct {
	Shader   string
	Bytecode Bytecode
	Stage    Stage
	// Target is the stage argument given to the compiler: the stage
	// marker for SPIR-V, the target profile for DXIL.
	Target string
	Output string
	// Reflection is the path of the reflection data, if written.
	Reflection string
}

// Dispatcher compiles shaders with the external compilers selected by
// its Config.
type Dispatcher struct {
	cfg    *Config
	runner Runner
	log    *slog.Logger
}

// NewDispatcher returns a Dispatcher for cfg that runs compilers with r.
// A nil logger means slog.Default.
func NewDispatcher(cfg *Config, r Runner, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{cfg: cfg, runner: r, log: log}
}

// Build compiles every shader into every requested bytecode. Up to
// Config.Jobs shaders are compiled at a time; the first error stops the
// build. Results are ordered by shader, then by bytecode.
func (d *Dispatcher) Build(ctx context.Context, shaders []string) ([]Result, error) {
	perShader := make([][]Result, len(shaders))
	if d.cfg.Jobs <= 1 {
		for i, sh := range shaders {
			res, err := d.Dispatch(ctx, sh)
			if err != nil {
				return flatten(perShader), err
			}
			perShader[i] = res
		}
		return flatten(perShader), nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Jobs)
	for i, sh := range shaders {
		i, sh := i, sh
		g.Go(func() error {
			res, err := d.Dispatch(gctx, sh)
			perShader[i] = res
			return err
		})
	}
	err := g.Wait()
	return flatten(perShader), err
}

func flatten(rs [][]Result) []Result {
	var all []Result
	for _, r := range rs {
		all = append(all, r...)
	}
	return all
}

// Dispatch compiles a single shader into every requested bytecode, one
// after the other. A shader whose stage cannot be inferred is rejected
// before anything is written.
func (d *Dispatcher) Dispatch(ctx context.Context, shader string) ([]Result, error) {
	st, err := InferStage(shader)
	if err != nil {
		return nil, err
	}
	var results []Result
	for _, b := range d.cfg.Bytecodes {
		res, err := d.compile(ctx, shader, st, b)
		if err != nil {
			return results, fmt.Errorf("%s (%s): %w", shader, b, err)
		}
		d.log.Info("compiled shader", "shader", shader, "bytecode", b.String(), "stage", res.Target, "output", res.Output)
		results = append(results, res)
	}
	return results, nil
}

func (d *Dispatcher) compile(ctx context.Context, shader string, st Stage, b Bytecode) (Result, error) {
	dir, err := OutDir(d.cfg.OutDir).Dir(b)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Shader:   shader,
		Bytecode: b,
		Stage:    st,
		Output:   dir.Binary(shader),
	}
	switch b {
	case SPIRV:
		res.Target = st.Marker()
		if err := d.cfg.GLSLValidator.Compile(ctx, d.runner, shader, res.Output, st, d.cfg.EntryPoint); err != nil {
			return res, err
		}
		if d.cfg.Reflect {
			if res.Reflection, err = d.reflect(ctx, dir, shader, res.Output); err != nil {
				return res, err
			}
		}
	case DXIL:
		res.Target = st.Profile(d.cfg.ShaderModel)
		if err := d.cfg.DXC.Compile(ctx, d.runner, shader, res.Output, res.Target, d.cfg.EntryPoint); err != nil {
			return res, err
		}
	}
	return res, nil
}

// reflect writes the spirv-cross reflection of the binary at spv as
// JSON next to it.
func (d *Dispatcher) reflect(ctx context.Context, dir OutDir, shader, spv string) (string, error) {
	meta, err := d.cfg.SPIRVCross.Reflect(ctx, d.runner, spv)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(meta, "", "\t")
	if err != nil {
		return "", err
	}
	path := dir.Path(shader, ".json")
	if err := dir.writeFile(path, append(data, '\n')); err != nil {
		return "", err
	}
	d.log.Debug("wrote reflection", "shader", shader, "path", path)
	return path, nil
}
