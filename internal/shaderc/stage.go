// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Stage is the pipeline stage a shader runs in.
type Stage uint8

const (
	StageUnknown Stage = iota
	StageVertex
	StageFragment
	StageCompute
)

var ErrUnknownStage = errors.New("unknown shader stage")

// stageMarkers maps file name substrings to stages. The order matters:
// every marker is checked and the last one present in a name wins, so
// "sky.vert.comp.hlsl" is a compute shader.
var stageMarkers = [...]struct {
	marker  string
	stage   Stage
	profile string
}{
	{"vert", StageVertex, "vs"},
	{"frag", StageFragment, "ps"},
	{"comp", StageCompute, "cs"},
}

// InferStage returns the stage of the shader at path, judged from the
// markers in its base name.
func InferStage(path string) (Stage, error) {
	name := filepath.Base(path)
	st := StageUnknown
	for _, m := range stageMarkers {
		if strings.Contains(name, m.marker) {
			st = m.stage
		}
	}
	if st == StageUnknown {
		return st, fmt.Errorf("%w: %q contains none of %s", ErrUnknownStage, name, strings.Join(stageMarkerNames(), ", "))
	}
	return st, nil
}

func stageMarkerNames() []string {
	names := make([]string, len(stageMarkers))
	for i, m := range stageMarkers {
		names[i] = m.marker
	}
	return names
}

// Marker returns the short stage name, which is also the stage
// argument glslangValidator expects.
func (s Stage) Marker() string {
	for _, m := range stageMarkers {
		if m.stage == s {
			return m.marker
		}
	}
	return ""
}

// Profile returns the HLSL target profile of the stage for the given
// shader model, such as "ps_6_0".
func (s Stage) Profile(shaderModel string) string {
	for _, m := range stageMarkers {
		if m.stage == s {
			return m.profile + "_" + shaderModel
		}
	}
	return ""
}

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}
