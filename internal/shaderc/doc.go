// SPDX-License-Identifier: Unlicense OR MIT

/*
Package shaderc compiles HLSL shader sources with external compilers.

A Dispatcher runs glslangValidator to produce SPIR-V for Vulkan and dxc
to produce DXIL for Direct3D 12. The shader stage is inferred from the
source file name, which must contain one of the markers "vert", "frag"
or "comp". Binaries are written to a per-bytecode subdirectory of the
output directory:

	<outdir>/vulkan/<name>.bin
	<outdir>/d3d12/<name>.bin

where <name> is the source base name without its extension.
*/
package shaderc
