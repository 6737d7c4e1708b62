// Package inspect converts a materialized animation-runtime object graph into
// a deterministic, serializable document. Every non-fatal failure degrades to
// a sentinel value or an error-flagged subtree; only a fatal load failure
// aborts an inspection.
package inspect

import (
	"sort"
	"strings"

	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// Blueprint is the analyzed descriptor of one view-model definition.
type Blueprint struct {
	Name string
	// Raw is the originating definition handle. Externally owned, never
	// mutated through this descriptor.
	Raw riv.ViewModelDefinition
	// Scalars and Nested keep original declaration order; sorting happens
	// only inside fingerprint computation.
	Scalars []models.ScalarPropertyDeclaration
	Nested  []string
	Fingerprint string
	// Declared file-global instance metadata, copied verbatim from the
	// definition. Independent of where instances are bound.
	InstanceCount int
	InstanceNames []string
}

// declaredProperties reads a property list through whichever access shape the
// runtime build supports: array shape first, count+index as fallback.
func declaredProperties(src riv.PropertySource) []riv.Property {
	if props, ok := src.Properties(); ok {
		return props
	}
	n := src.PropertyCount()
	out := make([]riv.Property, 0, n)
	for i := 0; i < n; i++ {
		p, err := src.PropertyAt(i)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func scalarType(t riv.PropertyType) (models.PropertyType, bool) {
	switch t {
	case riv.TypeNumber:
		return models.PropertyTypeNumber, true
	case riv.TypeString:
		return models.PropertyTypeString, true
	case riv.TypeBoolean:
		return models.PropertyTypeBoolean, true
	case riv.TypeColor:
		return models.PropertyTypeColor, true
	case riv.TypeEnum:
		return models.PropertyTypeEnum, true
	case riv.TypeTrigger:
		return models.PropertyTypeTrigger, true
	default:
		return "", false
	}
}

// fingerprintProperties computes the canonical identity string of a declared
// property set: "name:type" pairs sorted by name, joined with "|". The result
// is order-independent over the input.
func fingerprintProperties(props []riv.Property) string {
	pairs := make([]string, 0, len(props))
	for _, p := range props {
		pairs = append(pairs, p.Name+":"+p.Type.String())
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

// analyzeBlueprint turns a raw definition into a Blueprint descriptor.
func analyzeBlueprint(def riv.ViewModelDefinition, name string) *Blueprint {
	bp := &Blueprint{Name: name, Raw: def}

	props := declaredProperties(def)
	for _, p := range props {
		if p.Type == riv.TypeViewModel {
			bp.Nested = append(bp.Nested, p.Name)
			continue
		}
		if t, ok := scalarType(p.Type); ok {
			bp.Scalars = append(bp.Scalars, models.ScalarPropertyDeclaration{Name: p.Name, Type: t})
		}
	}

	bp.Fingerprint = fingerprintProperties(props)
	bp.InstanceCount = def.InstanceCount()
	bp.InstanceNames = append([]string(nil), def.InstanceNames()...)
	return bp
}
