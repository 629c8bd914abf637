package programs

import (
	"golang.org/x/exp/slices"

	"github.com/gogpu/spvkit/pipeline"
)

// Sample is a named sample configuration constructor.
type Sample struct {
	Name string
	New  func(process, device any) pipeline.Configuration
}

var samples = []Sample{
	{Name: "particles", New: func(p, d any) pipeline.Configuration { return NewParticles(p, d) }},
	{Name: "textured", New: func(p, d any) pipeline.Configuration { return NewTextured(p, d) }},
}

// All returns every sample sorted by name.
func All() []Sample { return slices.Clone(samples) }

// Lookup returns the sample called name.
func Lookup(name string) (Sample, bool) {
	i := slices.IndexFunc(samples, func(s Sample) bool { return s.Name == name })
	if i < 0 {
		return Sample{}, false
	}
	return samples[i], true
}
