package shader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/spvbatch/internal/fsutil"
)

// Stage is the pipeline stage a source is compiled for.
type Stage int

const (
	Unknown Stage = iota
	Vertex
	Fragment
	Compute
	Geometry
	TessControl
	TessEvaluation
)

// Source extensions. Only vertex and fragment are compiled by default;
// the others are opt-in through the batch configuration.
const (
	ExtVertex   = ".vert"
	ExtFragment = ".frag"
	ExtCompute  = ".comp"
	ExtGeometry = ".geom"
	ExtTessCtrl = ".tesc"
	ExtTessEval = ".tese"
	ExtWGSL     = ".wgsl"
)

// DefaultExtensions is the discovery order used when none is given.
var DefaultExtensions = []string{ExtVertex, ExtFragment}

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case Compute:
		return "compute"
	case Geometry:
		return "geometry"
	case TessControl:
		return "tess_control"
	case TessEvaluation:
		return "tess_evaluation"
	default:
		return "unknown"
	}
}

// StageFor maps a file extension to its stage, following the extensions
// glslangValidator recognises. WGSL files carry their entry points inside
// the source, so they report Unknown with ok=true.
func StageFor(ext string) (Stage, bool) {
	switch ext {
	case ExtVertex:
		return Vertex, true
	case ExtFragment:
		return Fragment, true
	case ExtCompute:
		return Compute, true
	case ExtGeometry:
		return Geometry, true
	case ExtTessCtrl:
		return TessControl, true
	case ExtTessEval:
		return TessEvaluation, true
	case ExtWGSL:
		return Unknown, true
	}
	return Unknown, false
}

// Source is a single shader file found during discovery.
type Source struct {
	Path     string
	BaseName string
	Ext      string
	Stage    Stage
}

// Output is the file name the compiled binary is written to. It is
// relative and carries no directory.
func (s Source) Output() string {
	return s.BaseName + ".spv"
}

func (s Source) String() string {
	return s.Path
}

// BaseName strips the directory and the final extension from path.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// NewSource builds a Source for path, inferring the stage from its
// extension.
func NewSource(path string) (Source, error) {
	ext := filepath.Ext(path)
	stage, ok := StageFor(ext)
	if !ok {
		return Source{}, fmt.Errorf("unsupported shader extension %q for %s", ext, path)
	}
	return Source{Path: path, BaseName: BaseName(path), Ext: ext, Stage: stage}, nil
}

// Discover lists the sources in dir matching each extension. Groups are
// concatenated in the order the extensions are given; within a group the
// order is that of the directory listing. Only dir itself is searched.
func Discover(dir string, exts ...string) ([]Source, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var sources []Source
	for _, ext := range exts {
		paths, err := fsutil.FindFilesByExtension(dir, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s files in %s: %w", ext, dir, err)
		}
		for _, p := range paths {
			src, err := NewSource(p)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}
	return sources, nil
}

// Collisions groups sources that share an output name. A vertex and a
// fragment shader with the same base name both write <base>.spv, and the
// later one overwrites the earlier. The map only holds names used more
// than once.
func Collisions(sources []Source) map[string][]Source {
	byOutput := make(map[string][]Source)
	for _, s := range sources {
		byOutput[s.Output()] = append(byOutput[s.Output()], s)
	}
	for name, group := range byOutput {
		if len(group) < 2 {
			delete(byOutput, name)
		}
	}
	return byOutput
}
