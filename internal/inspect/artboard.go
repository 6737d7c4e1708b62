package inspect

import (
	"fmt"

	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// assembleArtboards enumerates artboards with their animations and state
// machines in declaration order, attaching the resolved default view-model
// instance to the artboard active at load time.
func assembleArtboards(f riv.File, cal *calibration, activeName string, defaultVM *models.ParsedInstance) []models.ArtboardDescriptor {
	out := make([]models.ArtboardDescriptor, 0, f.ArtboardCount())

	for i := 0; i < f.ArtboardCount(); i++ {
		a, err := f.ArtboardAt(i)
		if err != nil || a == nil {
			fmt.Printf("[Artboard] skipping artboard %d: %v\n", i, err)
			continue
		}

		desc := models.ArtboardDescriptor{
			Name:          a.Name(),
			Animations:    make([]models.AnimationDescriptor, 0, a.AnimationCount()),
			StateMachines: make([]models.StateMachineDescriptor, 0, a.StateMachineCount()),
			ViewModels:    make([]models.ParsedInstance, 0, 1),
		}

		for j := 0; j < a.AnimationCount(); j++ {
			anim, err := a.AnimationAt(j)
			if err != nil {
				continue
			}
			desc.Animations = append(desc.Animations, models.AnimationDescriptor{
				Name:      anim.Name,
				FPS:       anim.FPS,
				Duration:  anim.Duration,
				WorkStart: anim.WorkStart,
				WorkEnd:   anim.WorkEnd,
				LoopType:  anim.Loop,
			})
		}

		for j := 0; j < a.StateMachineCount(); j++ {
			sm, err := a.StateMachineAt(j)
			if err != nil || sm == nil {
				continue
			}
			raw := sm.RawInputs()
			smDesc := models.StateMachineDescriptor{
				Name:   sm.Name(),
				Inputs: make([]models.InputDescriptor, 0, len(raw)),
			}
			for _, in := range raw {
				smDesc.Inputs = append(smDesc.Inputs, models.InputDescriptor{
					Name: in.Name,
					Type: cal.typeName(in.TypeCode),
				})
			}
			desc.StateMachines = append(desc.StateMachines, smDesc)
		}

		if defaultVM != nil && a.Name() == activeName {
			attachViewModel(&desc, *defaultVM)
		}

		out = append(out, desc)
	}

	return out
}

// attachViewModel appends a resolved instance, deduplicating by instance and
// blueprint name.
func attachViewModel(desc *models.ArtboardDescriptor, vm models.ParsedInstance) {
	for _, existing := range desc.ViewModels {
		if existing.InstanceName == vm.InstanceName && existing.BlueprintName == vm.BlueprintName {
			return
		}
	}
	desc.ViewModels = append(desc.ViewModels, vm)
}

// extractEnums copies the file's global enums in index order.
func extractEnums(f riv.File) []models.EnumDescriptor {
	out := make([]models.EnumDescriptor, 0, f.EnumCount())
	for i := 0; i < f.EnumCount(); i++ {
		e, err := f.EnumAt(i)
		if err != nil {
			continue
		}
		values := e.Values
		if values == nil {
			values = []string{}
		}
		out = append(out, models.EnumDescriptor{Name: e.Name, Values: values})
	}
	return out
}
