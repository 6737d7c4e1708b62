package inspect

import (
	"fmt"

	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// Placeholder blueprint names for nodes that could not be resolved.
const (
	blueprintNotFound   = "Unknown (instance not found)"
	blueprintUnresolved = "Unknown (unresolved blueprint)"
	blueprintCyclic     = "Cyclic reference detected"
)

// resolveStrategy attempts to determine which blueprint produced an instance.
// Strategies are pure over their inputs; nil means "no opinion".
type resolveStrategy func(known []*Blueprint, inst riv.Instance) *Blueprint

// The chain is ordered by reliability: a direct back-reference beats a name
// match, which beats a structural fingerprint match (fingerprints collide for
// identically-shaped blueprints, names do not).
var resolveStrategies = []resolveStrategy{
	resolveByBackReference,
	resolveByName,
	resolveByFingerprint,
}

func resolveByBackReference(known []*Blueprint, inst riv.Instance) *Blueprint {
	def, ok := inst.Definition()
	if !ok || def == nil {
		return nil
	}
	for _, bp := range known {
		if bp.Raw == def {
			return bp
		}
	}
	for _, bp := range known {
		if bp.Name == def.Name() {
			return bp
		}
	}
	// The back-reference is authoritative even when discovery missed it.
	return analyzeBlueprint(def, def.Name())
}

func resolveByName(known []*Blueprint, inst riv.Instance) *Blueprint {
	name := inst.Name()
	if name == "" {
		return nil
	}
	for _, bp := range known {
		if bp.Name == name {
			return bp
		}
	}
	return nil
}

func resolveByFingerprint(known []*Blueprint, inst riv.Instance) *Blueprint {
	fp := fingerprintProperties(declaredProperties(inst))
	if fp == "" {
		return nil
	}
	for _, bp := range known {
		if bp.Fingerprint == fp {
			return bp
		}
	}
	return nil
}

// resolveBlueprint runs the strategy chain with first-success semantics.
func resolveBlueprint(known []*Blueprint, inst riv.Instance) *Blueprint {
	for _, s := range resolveStrategies {
		if bp := s(known, inst); bp != nil {
			return bp
		}
	}
	return nil
}

func placeholderNode(name, blueprintName string) models.ParsedInstance {
	return models.ParsedInstance{
		InstanceName:     name,
		BlueprintName:    blueprintName,
		Properties:       []models.ScalarProperty{},
		NestedViewModels: []models.ParsedInstance{},
		Error:            true,
	}
}

// resolver parses live instances against the set of known blueprints.
type resolver struct {
	known []*Blueprint
}

// parse resolves a root instance. outputName is the blueprint name for the
// top-level default instance.
func (r *resolver) parse(inst riv.Instance, outputName string, bp *Blueprint) models.ParsedInstance {
	visited := map[riv.Instance]bool{inst: true}
	return r.parseInstance(inst, outputName, bp, visited)
}

// parseInstance builds the output node for inst and recurses through its
// nested view-model properties. visited holds the instance identities on the
// active recursion path; entries are added before a recursive call and
// removed on return.
func (r *resolver) parseInstance(inst riv.Instance, outputName string, bp *Blueprint, visited map[riv.Instance]bool) models.ParsedInstance {
	// A blueprint with a single global instance that is anonymous or the sole
	// instance of its blueprint gets the literal output name "Instance".
	if bp.InstanceCount == 1 {
		if inst.Name() == "" || len(bp.InstanceNames) <= 1 {
			outputName = "Instance"
		}
	}

	node := models.ParsedInstance{
		InstanceName:     outputName,
		BlueprintName:    bp.Name,
		Properties:       make([]models.ScalarProperty, 0, len(bp.Scalars)),
		NestedViewModels: make([]models.ParsedInstance, 0, len(bp.Nested)),
	}

	for _, decl := range bp.Scalars {
		node.Properties = append(node.Properties, models.ScalarProperty{
			Name:  decl.Name,
			Type:  decl.Type,
			Value: extractValue(inst, decl),
		})
	}

	for _, propName := range bp.Nested {
		nested, err := inst.ViewModel(propName)
		if err != nil || nested == nil {
			node.NestedViewModels = append(node.NestedViewModels, placeholderNode(propName, blueprintNotFound))
			continue
		}

		nestedBP := resolveBlueprint(r.known, nested)
		if nestedBP == nil {
			fmt.Printf("[Resolve] no strategy matched nested instance under %q\n", propName)
			node.NestedViewModels = append(node.NestedViewModels, placeholderNode(propName, blueprintUnresolved))
			continue
		}

		if visited[nested] {
			node.NestedViewModels = append(node.NestedViewModels, placeholderNode(propName, blueprintCyclic))
			continue
		}

		visited[nested] = true
		node.NestedViewModels = append(node.NestedViewModels, r.parseInstance(nested, propName, nestedBP, visited))
		delete(visited, nested)
	}

	return node
}
