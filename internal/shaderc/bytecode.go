// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"errors"
	"fmt"
	"strings"
)

// Bytecode is a compiled shader representation.
type Bytecode uint8

const (
	// SPIRV is the Vulkan bytecode, produced by glslangValidator.
	SPIRV Bytecode = iota + 1
	// DXIL is the Direct3D 12 bytecode, produced by dxc.
	DXIL
)

var ErrUnknownBytecode = errors.New("unknown bytecode")

// bytecodes lists the supported formats in their canonical order.
var bytecodes = [...]struct {
	b    Bytecode
	name string
	dir  string
}{
	{SPIRV, "spirv", "vulkan"},
	{DXIL, "dxil", "d3d12"},
}

// ParseBytecode returns the Bytecode named by s.
func ParseBytecode(s string) (Bytecode, error) {
	for _, e := range bytecodes {
		if e.name == s {
			return e.b, nil
		}
	}
	return 0, fmt.Errorf("%w %q (want %s)", ErrUnknownBytecode, s, strings.Join(BytecodeNames(), " or "))
}

// BytecodeNames returns the command line names of the supported formats.
func BytecodeNames() []string {
	names := make([]string, len(bytecodes))
	for i, e := range bytecodes {
		names[i] = e.name
	}
	return names
}

func (b Bytecode) String() string {
	for _, e := range bytecodes {
		if e.b == b {
			return e.name
		}
	}
	return fmt.Sprintf("Bytecode(%d)", uint8(b))
}

// Dir returns the name of the output subdirectory for b, or the empty
// string if b is not a supported format.
func (b Bytecode) Dir() string {
	for _, e := range bytecodes {
		if e.b == b {
			return e.dir
		}
	}
	return ""
}

// Valid reports whether b is a supported format.
func (b Bytecode) Valid() bool {
	return b.Dir() != ""
}

func (b Bytecode) check() error {
	if !b.Valid() {
		return fmt.Errorf("%w %d", ErrUnknownBytecode, uint8(b))
	}
	return nil
}

// Bytecodes is a list of requested formats. It implements flag.Value;
// each Set call accepts a comma separated list and appends to the
// list, skipping duplicates.
type Bytecodes []Bytecode

func (bs *Bytecodes) String() string {
	if bs == nil {
		return ""
	}
	names := make([]string, len(*bs))
	for i, b := range *bs {
		names[i] = b.String()
	}
	return strings.Join(names, ",")
}

func (bs *Bytecodes) Set(v string) error {
	for _, tok := range strings.Split(v, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		b, err := ParseBytecode(tok)
		if err != nil {
			return err
		}
		bs.Add(b)
	}
	return nil
}

// Add appends b unless it is already in the list.
func (bs *Bytecodes) Add(b Bytecode) {
	for _, e := range *bs {
		if e == b {
			return
		}
	}
	*bs = append(*bs, b)
}
