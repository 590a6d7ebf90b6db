// SPDX-License-Identifier: Unlicense OR MIT

package main

const mainUsage = `The compileshaders command compiles HLSL shaders to SPIR-V and DXIL.

Usage:

	compileshaders -outdir <dir> -bytecodes <spirv,dxil> -shader <file> [flags] [file ...]

The -outdir flag specifies the root directory of the compiled shaders. SPIR-V
binaries are written to its vulkan subdirectory, DXIL binaries to its d3d12
subdirectory. Subdirectories are created as needed. A binary is named after its
source with the extension replaced by .bin, so shaders/basic.vert.hlsl becomes
basic.vert.bin.

The -bytecodes flag, or its alias -bytecode, selects the bytecodes to produce:
spirv for Vulkan through glslangValidator, dxil for Direct3D 12 through dxc. It
takes a comma separated list and may be repeated. Bytecode names given as
arguments are added to the list as well, so

	compileshaders --outdir out --bytecodes spirv dxil --shader blur.comp.hlsl

compiles blur.comp.hlsl to both bytecodes.

The -shader flag specifies a shader source file and may be repeated; any other
arguments are compiled too. The shader stage is taken from the file name, which
must contain vert, frag or comp. If it contains more than one, the last in that
order wins. Shaders whose stage cannot be determined are rejected.

The -config flag names a TOML file overriding the compilers and their settings:

	entry_point = "main"
	shader_model = "6_0"

	[spirv]
	bin = "glslangValidator"
	flags = "--target-env vulkan1.2"

	[dxil]
	bin = "dxc"
	flags = "-Qstrip_reflect"

	[spirv_cross]
	bin = "spirv-cross"

The -j flag sets the number of shaders compiled in parallel. The default, 1,
compiles them one after the other.

The -reflect flag writes the spirv-cross reflection of every SPIR-V binary to a
.json file next to it.

The -watch flag keeps running after the build and recompiles shaders when their
source files change.

The -x flag prints the compiler commands. The -v flag enables debug logging.
`
