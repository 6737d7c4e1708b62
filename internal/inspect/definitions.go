package inspect

import (
	"fmt"

	"github.com/riv-inspector/backend/internal/riv"
)

// maxProbeFailures bounds index probing when the runtime build exposes no
// definition count accessor. Some builds throw once the valid index range is
// exceeded instead of reporting a count.
const maxProbeFailures = 3

type rawDefinition struct {
	def  riv.ViewModelDefinition
	name string
}

// discoverDefinitions enumerates blueprint definitions in index order. A
// definite count is preferred as the loop bound; probing is the fallback and
// stops after maxProbeFailures consecutive failures or nameless results.
func discoverDefinitions(f riv.File) []rawDefinition {
	out := make([]rawDefinition, 0)

	if n, ok := f.ViewModelCount(); ok {
		for i := 0; i < n; i++ {
			def, err := f.ViewModelAt(i)
			if err != nil || def == nil || def.Name() == "" {
				fmt.Printf("[Discover] skipping definition %d: %v\n", i, err)
				continue
			}
			out = append(out, rawDefinition{def: def, name: def.Name()})
		}
		return out
	}

	failures := 0
	for i := 0; failures < maxProbeFailures; i++ {
		def, err := f.ViewModelAt(i)
		if err != nil || def == nil || def.Name() == "" {
			failures++
			continue
		}
		failures = 0
		out = append(out, rawDefinition{def: def, name: def.Name()})
	}
	return out
}
