// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"context"
	"fmt"
)

// GLSLValidator is the Khronos reference compiler, used to compile
// HLSL to SPIR-V for Vulkan.
type GLSLValidator struct {
	Bin string
	// Flags are passed before the regular arguments.
	Flags []string
}

func NewGLSLValidator() *GLSLValidator { return &GLSLValidator{Bin: "glslangValidator"} }

// Compile compiles the shader source at in to SPIR-V in out.
// glslangValidator derives the stage from the ".<stage>.hlsl" name of
// the input, so st is not passed along; it must still be known.
func (glsl *GLSLValidator) Compile(ctx context.Context, r Runner, in, out string, st Stage, entryPoint string) error {
	if st == StageUnknown {
		return fmt.Errorf("glslangValidator: %w", ErrUnknownStage)
	}
	_, err := r.Run(ctx, glsl.Bin, glsl.args(in, out, entryPoint)...)
	return err
}

func (glsl *GLSLValidator) args(in, out, entryPoint string) []string {
	args := append([]string{}, glsl.Flags...)
	return append(args,
		"-e", entryPoint,
		"-V", // Vulkan SPIR-V.
		in,
		"-o", out,
	)
}
