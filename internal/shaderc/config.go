// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-shellwords"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultEntryPoint  = "main"
	DefaultShaderModel = "6_0"
)

// Config holds the options of a build. It is filled in once at startup
// and not modified afterwards.
type Config struct {
	// OutDir is the root directory of the compiled shaders.
	OutDir string
	// Bytecodes lists the formats to produce for every shader.
	Bytecodes Bytecodes
	// Shaders lists the shader sources to compile.
	Shaders []string

	EntryPoint  string
	ShaderModel string

	GLSLValidator GLSLValidator
	DXC           DXC
	SPIRVCross    SPIRVCross

	// Jobs is the number of shaders compiled at the same time.
	Jobs int
	// Reflect writes spirv-cross reflection data next to SPIR-V output.
	Reflect bool
}

// DefaultConfig returns a Config with the default tools, entry point
// and shader model.
func DefaultConfig() Config {
	return Config{
		EntryPoint:    DefaultEntryPoint,
		ShaderModel:   DefaultShaderModel,
		GLSLValidator: *NewGLSLValidator(),
		DXC:           *NewDXC(),
		SPIRVCross:    *NewSPIRVCross(),
		Jobs:          1,
	}
}

// Validate reports missing or inconsistent options.
func (c *Config) Validate() error {
	var errs []error
	if c.OutDir == "" {
		errs = append(errs, errors.New("no output directory (-outdir)"))
	}
	if len(c.Bytecodes) == 0 {
		errs = append(errs, errors.New("no bytecode (-bytecodes)"))
	}
	for _, b := range c.Bytecodes {
		if err := b.check(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(c.Shaders) == 0 {
		errs = append(errs, errors.New("no shader (-shader)"))
	}
	if c.EntryPoint == "" {
		errs = append(errs, errors.New("empty entry point"))
	}
	if c.ShaderModel == "" {
		errs = append(errs, errors.New("empty shader model"))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("invalid job count %d", c.Jobs))
	}
	return errors.Join(errs...)
}

// toolFile is a tool section of a config file.
type toolFile struct {
	Bin   string `toml:"bin"`
	Flags string `toml:"flags"`
}

// configFile is the on-disk form of the tool settings.
type configFile struct {
	EntryPoint  string   `toml:"entry_point"`
	ShaderModel string   `toml:"shader_model"`
	SPIRV       toolFile `toml:"spirv"`
	DXIL        toolFile `toml:"dxil"`
	SPIRVCross  toolFile `toml:"spirv_cross"`
}

// OpenFile applies the settings of the TOML config file at path to c.
// Settings absent from the file keep their current value.
func (c *Config) OpenFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.ReadTOML(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadTOML applies TOML encoded settings to c.
func (c *Config) ReadTOML(data []byte) error {
	var f configFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return err
	}
	if f.EntryPoint != "" {
		c.EntryPoint = f.EntryPoint
	}
	if f.ShaderModel != "" {
		c.ShaderModel = f.ShaderModel
	}
	var err error
	if c.GLSLValidator.Bin, c.GLSLValidator.Flags, err = f.SPIRV.apply(c.GLSLValidator.Bin, c.GLSLValidator.Flags); err != nil {
		return fmt.Errorf("spirv: %w", err)
	}
	if c.DXC.Bin, c.DXC.Flags, err = f.DXIL.apply(c.DXC.Bin, c.DXC.Flags); err != nil {
		return fmt.Errorf("dxil: %w", err)
	}
	if c.SPIRVCross.Bin, c.SPIRVCross.Flags, err = f.SPIRVCross.apply(c.SPIRVCross.Bin, c.SPIRVCross.Flags); err != nil {
		return fmt.Errorf("spirv_cross: %w", err)
	}
	return nil
}

func (t toolFile) apply(bin string, flags []string) (string, []string, error) {
	if t.Bin != "" {
		bin = t.Bin
	}
	if t.Flags != "" {
		args, err := shellwords.Parse(t.Flags)
		if err != nil {
			return "", nil, fmt.Errorf("flags %q: %w", t.Flags, err)
		}
		flags = args
	}
	return bin, flags, nil
}
