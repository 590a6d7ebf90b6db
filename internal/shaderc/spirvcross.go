// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Metadata contains reflection data about a SPIR-V shader.
type Metadata struct {
	EntryPoints []EntryPoint      `json:"entry_points,omitempty"`
	Inputs      []InputLocation   `json:"inputs,omitempty"`
	Uniforms    []UniformBlock    `json:"uniforms,omitempty"`
	Textures    []TextureBinding  `json:"textures,omitempty"`
	Storage     []StorageBinding  `json:"storage_buffers,omitempty"`
	Locations   []UniformLocation `json:"uniform_locations,omitempty"`
}

type EntryPoint struct {
	Name  string `json:"name"`
	Stage string `json:"stage"`
	// Workgroup size of compute shaders.
	WorkgroupSize []int `json:"workgroup_size,omitempty"`
}

type InputLocation struct {
	Name     string `json:"name"`
	Location int    `json:"location"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
}

type UniformBlock struct {
	Name      string `json:"name"`
	Set       int    `json:"set"`
	Binding   int    `json:"binding"`
	BlockSize int    `json:"block_size"`
}

// UniformLocation is a uniform block member, with Offset relative to
// the start of all blocks laid out in order.
type UniformLocation struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Size   int    `json:"size"`
	Offset int    `json:"offset"`
}

type TextureBinding struct {
	Name    string `json:"name"`
	Set     int    `json:"set"`
	Binding int    `json:"binding"`
}

type StorageBinding struct {
	Name      string `json:"name"`
	Set       int    `json:"set"`
	Binding   int    `json:"binding"`
	BlockSize int    `json:"block_size"`
}

// SPIRVCross cross-compiles and reflects spirv shaders.
type SPIRVCross struct {
	Bin   string
	Flags []string
}

func NewSPIRVCross() *SPIRVCross { return &SPIRVCross{Bin: "spirv-cross"} }

// Reflect extracts metadata for the SPIR-V shader at path.
func (spirv *SPIRVCross) Reflect(ctx context.Context, r Runner, path string) (Metadata, error) {
	args := append([]string{}, spirv.Flags...)
	args = append(args, path, "--reflect")
	out, err := r.Run(ctx, spirv.Bin, args...)
	if err != nil {
		return Metadata{}, err
	}
	meta, err := parseMetadata(out)
	if err != nil {
		return Metadata{}, fmt.Errorf("%s\nfailed to parse metadata: %w", out, err)
	}
	return meta, nil
}

func parseMetadata(data []byte) (Metadata, error) {
	var reflect struct {
		EntryPoints []struct {
			Name          string `json:"name"`
			Mode          string `json:"mode"`
			WorkgroupSize []int  `json:"workgroup_size"`
		} `json:"entryPoints"`
		Types map[string]struct {
			Name    string `json:"name"`
			Members []struct {
				Name   string `json:"name"`
				Type   string `json:"type"`
				Offset int    `json:"offset"`
			} `json:"members"`
		} `json:"types"`
		Inputs []struct {
			Name     string `json:"name"`
			Type     string `json:"type"`
			Location int    `json:"location"`
		} `json:"inputs"`
		Textures []struct {
			Name    string `json:"name"`
			Type    string `json:"type"`
			Set     int    `json:"set"`
			Binding int    `json:"binding"`
		} `json:"textures"`
		SeparateImages []struct {
			Name    string `json:"name"`
			Type    string `json:"type"`
			Set     int    `json:"set"`
			Binding int    `json:"binding"`
		} `json:"separate_images"`
		UBOs []struct {
			Name      string `json:"name"`
			Type      string `json:"type"`
			BlockSize int    `json:"block_size"`
			Set       int    `json:"set"`
			Binding   int    `json:"binding"`
		} `json:"ubos"`
		SSBOs []struct {
			Name      string `json:"name"`
			BlockSize int    `json:"block_size"`
			Set       int    `json:"set"`
			Binding   int    `json:"binding"`
		} `json:"ssbos"`
	}
	if err := json.Unmarshal(data, &reflect); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse reflection data: %w", err)
	}

	var m Metadata

	for _, ep := range reflect.EntryPoints {
		m.EntryPoints = append(m.EntryPoints, EntryPoint{
			Name:          ep.Name,
			Stage:         ep.Mode,
			WorkgroupSize: ep.WorkgroupSize,
		})
	}

	for _, input := range reflect.Inputs {
		// Size is left zero for types without a fixed component count.
		size, _ := dataTypeSize(input.Type)
		m.Inputs = append(m.Inputs, InputLocation{
			Name:     input.Name,
			Location: input.Location,
			Type:     input.Type,
			Size:     size,
		})
	}
	sort.Slice(m.Inputs, func(i, j int) bool {
		return m.Inputs[i].Location < m.Inputs[j].Location
	})

	blockOffset := 0
	for _, block := range reflect.UBOs {
		m.Uniforms = append(m.Uniforms, UniformBlock{
			Name:      block.Name,
			Set:       block.Set,
			Binding:   block.Binding,
			BlockSize: block.BlockSize,
		})
		t := reflect.Types[block.Type]
		// By convention uniform block variables are named by prepending an underscore
		// and converting to lowercase.
		blockVar := "_" + strings.ToLower(block.Name)
		for _, member := range t.Members {
			size, err := dataTypeSize(member.Type)
			if err != nil {
				// Nested structs and arrays are listed by block only.
				continue
			}
			m.Locations = append(m.Locations, UniformLocation{
				Name:   fmt.Sprintf("%s.%s", blockVar, member.Name),
				Type:   member.Type,
				Size:   size,
				Offset: blockOffset + member.Offset,
			})
		}
		blockOffset += block.BlockSize
	}

	for _, tex := range append(reflect.Textures, reflect.SeparateImages...) {
		m.Textures = append(m.Textures, TextureBinding{
			Name:    tex.Name,
			Set:     tex.Set,
			Binding: tex.Binding,
		})
	}

	for _, sb := range reflect.SSBOs {
		m.Storage = append(m.Storage, StorageBinding{
			Name:      sb.Name,
			Set:       sb.Set,
			Binding:   sb.Binding,
			BlockSize: sb.BlockSize,
		})
	}

	return m, nil
}

// dataTypeSize returns the number of components of a scalar, vector or
// square matrix type.
func dataTypeSize(t string) (int, error) {
	switch t {
	case "float", "int", "uint", "bool", "double":
		return 1, nil
	case "vec2", "ivec2", "uvec2", "bvec2", "dvec2":
		return 2, nil
	case "vec3", "ivec3", "uvec3", "bvec3", "dvec3":
		return 3, nil
	case "vec4", "ivec4", "uvec4", "bvec4", "dvec4", "mat2":
		return 4, nil
	case "mat3":
		return 9, nil
	case "mat4":
		return 16, nil
	default:
		return 0, fmt.Errorf("unsupported data type: %s", t)
	}
}
