// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutDir is the root of the compiled shader tree. Each bytecode gets
// its own subdirectory.
type OutDir string

// Dir creates the subdirectory for b if it does not exist and returns
// it.
func (od OutDir) Dir(b Bytecode) (OutDir, error) {
	if err := b.check(); err != nil {
		return "", err
	}
	dirname := filepath.Join(string(od), b.Dir())
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return "", fmt.Errorf("failed to create %q: %w", dirname, err)
	}
	return OutDir(dirname), nil
}

// Binary returns the path of the compiled form of the shader source
// at src: its base name with the extension replaced by ".bin".
func (od OutDir) Binary(src string) string {
	return od.Path(src, ".bin")
}

// Path returns the path of a file named after the shader source at
// src with the extension replaced by ext.
func (od OutDir) Path(src, ext string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(string(od), base+ext)
}

func (od OutDir) writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to create %v: %w", path, err)
	}
	return nil
}
