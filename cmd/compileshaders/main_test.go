// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluent.dev/shaderc/internal/shaderc"
)

func TestMain(m *testing.M) {
	if os.Getenv("COMPILESHADERS_FAKE_COMPILER") != "" {
		// Act as glslangValidator or dxc, so that the end-to-end tests
		// run without the real compilers installed.
		os.Exit(fakeCompiler(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// fakeCompiler writes its arguments to the output file named by -o or
// -Fo. Inputs named broken.* fail to compile.
func fakeCompiler(args []string) int {
	var out string
	for i, a := range args {
		if strings.Contains(a, "broken") {
			fmt.Fprintf(os.Stderr, "%s(3): error: undeclared identifier 'colour'\n", a)
			return 1
		}
		if (a == "-o" || a == "-Fo") && i+1 < len(args) {
			out = args[i+1]
		}
	}
	if out == "" {
		fmt.Fprintln(os.Stderr, "no output file")
		return 2
	}
	if err := os.WriteFile(out, []byte(strings.Join(args, " ")), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// setupCompilers returns a config file that points both compilers at the
// test binary.
func setupCompilers(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	t.Setenv("COMPILESHADERS_FAKE_COMPILER", "1")
	cfg := fmt.Sprintf(`
[spirv]
bin = '%s'
flags = "glslangValidator"

[dxil]
bin = '%s'
flags = "dxc"
`, exe, exe)
	path := filepath.Join(t.TempDir(), "shaderc.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func runCompileShaders(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCompileScenarios(t *testing.T) {
	config := setupCompilers(t)
	tests := []struct {
		bytecodes string
		shader    string
		outputs   map[string]string
	}{
		{
			bytecodes: "spirv",
			shader:    "shaders/basic.vert.hlsl",
			outputs: map[string]string{
				"vulkan/basic.vert.bin": "glslangValidator -e main -V shaders/basic.vert.hlsl -o ",
			},
		},
		{
			bytecodes: "dxil",
			shader:    "shaders/basic.frag.hlsl",
			outputs: map[string]string{
				"d3d12/basic.frag.bin": "dxc -E main -T ps_6_0 -Fo ",
			},
		},
		{
			bytecodes: "spirv,dxil",
			shader:    "shaders/blur.comp.hlsl",
			outputs: map[string]string{
				"vulkan/blur.comp.bin": "glslangValidator -e main -V shaders/blur.comp.hlsl -o ",
				"d3d12/blur.comp.bin":  "dxc -E main -T cs_6_0 -Fo ",
			},
		},
	}
	for _, test := range tests {
		out := t.TempDir()
		code, _, stderr := runCompileShaders(t, "-config", config, "--outdir", out, "--bytecodes", test.bytecodes, "--shader", test.shader)
		require.Equal(t, 0, code, stderr)
		for rel, want := range test.outputs {
			got := readOutput(t, filepath.Join(out, filepath.FromSlash(rel)))
			assert.True(t, strings.HasPrefix(got, want), "%s: got %q, want prefix %q", rel, got, want)
		}
		if !strings.Contains(test.bytecodes, "spirv") {
			assert.NoDirExists(t, filepath.Join(out, "vulkan"))
		}
		if !strings.Contains(test.bytecodes, "dxil") {
			assert.NoDirExists(t, filepath.Join(out, "d3d12"))
		}
	}
}

func TestLegacyArguments(t *testing.T) {
	config := setupCompilers(t)
	out := t.TempDir()

	code, _, stderr := runCompileShaders(t, "--config", config, "--outdir", out, "--bytecodes", "spirv", "dxil", "--shader", "shaders/blur.comp.hlsl")
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(out, "vulkan", "blur.comp.bin"))
	assert.FileExists(t, filepath.Join(out, "d3d12", "blur.comp.bin"))

	code, _, stderr = runCompileShaders(t, "--config", config, "--outdir", out, "--bytecode", "dxil", "a.vert.hlsl", "b.frag.hlsl")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, readOutput(t, filepath.Join(out, "d3d12", "a.vert.bin")), "-T vs_6_0")
	assert.Contains(t, readOutput(t, filepath.Join(out, "d3d12", "b.frag.bin")), "-T ps_6_0")

	opts, err := parseArgs([]string{"-outdir", out, "-bytecodes", "dxil", "spirv", "dxil", "-shader", "a.vert.hlsl", "b.frag.hlsl"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, shaderc.Bytecodes{shaderc.DXIL, shaderc.SPIRV}, opts.cfg.Bytecodes)
	assert.Equal(t, []string{"a.vert.hlsl", "b.frag.hlsl"}, opts.cfg.Shaders)
}

func TestRepeatedBuild(t *testing.T) {
	config := setupCompilers(t)
	out := t.TempDir()
	args := []string{"-config", config, "-outdir", out, "-bytecodes", "spirv,dxil", "-shader", "basic.vert.hlsl"}

	for i := 0; i < 2; i++ {
		code, _, stderr := runCompileShaders(t, args...)
		require.Equal(t, 0, code, "run %d: %s", i, stderr)
	}
	assert.FileExists(t, filepath.Join(out, "vulkan", "basic.vert.bin"))
	assert.FileExists(t, filepath.Join(out, "d3d12", "basic.vert.bin"))
}

func TestPrintCommands(t *testing.T) {
	config := setupCompilers(t)
	out := t.TempDir()

	code, stdout, stderr := runCompileShaders(t, "-x", "-config", config, "-outdir", out, "-bytecodes", "dxil", "-shader", "basic.frag.hlsl")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "dxc -E main -T ps_6_0 -Fo "+filepath.Join(out, "d3d12", "basic.frag.bin")+" basic.frag.hlsl\n")
	assert.Contains(t, stderr, "compiled shader")
}

func TestUnknownStage(t *testing.T) {
	config := setupCompilers(t)
	out := t.TempDir()

	code, _, stderr := runCompileShaders(t, "-config", config, "-outdir", out, "-bytecodes", "spirv", "-shader", "shaders/lighting.hlsl")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown shader stage")
	assert.NoDirExists(t, filepath.Join(out, "vulkan"))
}

func TestCompilerFailure(t *testing.T) {
	config := setupCompilers(t)
	out := t.TempDir()

	code, _, stderr := runCompileShaders(t, "-config", config, "-outdir", out, "-bytecodes", "dxil", "-shader", "broken.frag.hlsl")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "undeclared identifier 'colour'")
	assert.Contains(t, stderr, "exit status 1")
	assert.NoFileExists(t, filepath.Join(out, "d3d12", "broken.frag.bin"))
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"-outdir", "out", "-bytecodes", "spirv"},
		{"-outdir", "out", "-shader", "a.vert.hlsl"},
		{"-bytecodes", "spirv", "-shader", "a.vert.hlsl"},
		{"-outdir", "out", "-bytecodes", "metal", "-shader", "a.vert.hlsl"},
		{"-outdir", "out", "-bytecodes", "spirv", "-shader", "a.vert.hlsl", "-j", "0"},
		{"-outdir", "out", "-bytecodes", "spirv", "-shader", "a.vert.hlsl", "-config", "does-not-exist.toml"},
		{"-nosuchflag"},
	}
	for _, args := range tests {
		code, _, stderr := runCompileShaders(t, args...)
		assert.Equal(t, 2, code, "%q", args)
		assert.NotEmpty(t, stderr, "%q", args)
	}

	code, _, stderr := runCompileShaders(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "The compileshaders command compiles HLSL shaders")
}
