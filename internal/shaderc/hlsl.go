// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"context"
	"fmt"
)

// DXC is hlsl compiler that targets ShaderModel 6.0 and newer.
type DXC struct {
	Bin   string
	Flags []string
}

func NewDXC() *DXC { return &DXC{Bin: "dxc"} }

// Compile compiles the shader source at in to DXIL in out, using the
// target profile such as "vs_6_0".
func (dxc *DXC) Compile(ctx context.Context, r Runner, in, out, profile, entryPoint string) error {
	if profile == "" {
		return fmt.Errorf("dxc: %w", ErrUnknownStage)
	}
	_, err := r.Run(ctx, dxc.Bin, dxc.args(in, out, profile, entryPoint)...)
	return err
}

func (dxc *DXC) args(in, out, profile, entryPoint string) []string {
	args := append([]string{}, dxc.Flags...)
	return append(args,
		"-E", entryPoint,
		"-T", profile,
		"-Fo", out,
		in,
	)
}
