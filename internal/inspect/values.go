package inspect

import (
	"fmt"

	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// triggerSentinel stands in for trigger properties; they have no persistent
// value to read.
const triggerSentinel = "(not applicable)"

// extractValue reads one property's current value. It never propagates a
// failure to its caller: missing accessors, missing values, and panicking
// runtime bindings all degrade to a descriptive sentinel string.
func extractValue(inst riv.Instance, decl models.ScalarPropertyDeclaration) (value interface{}) {
	defer func() {
		if r := recover(); r != nil {
			value = fmt.Sprintf("(extraction failed: %v)", r)
		}
	}()

	switch decl.Type {
	case models.PropertyTypeNumber:
		return readScalar(inst.Number, decl.Name)
	case models.PropertyTypeString:
		return readScalar(inst.String, decl.Name)
	case models.PropertyTypeBoolean:
		return readScalar(inst.Boolean, decl.Name)
	case models.PropertyTypeEnum:
		return readEnum(inst, decl.Name)
	case models.PropertyTypeColor:
		return readColor(inst, decl.Name)
	case models.PropertyTypeTrigger:
		return triggerSentinel
	default:
		return fmt.Sprintf("(unsupported type %q)", decl.Type)
	}
}

func readScalar(accessor func(string) (riv.ValueHandle, error), name string) interface{} {
	h, err := accessor(name)
	if err != nil {
		return fmt.Sprintf("(unavailable: %v)", err)
	}
	v, err := h.Value()
	if err != nil {
		return fmt.Sprintf("(no value: %v)", err)
	}
	return v
}

// readEnum falls back to the string accessor under the same name when the
// enum accessor or its value is unavailable. The fallback is a cross-type
// compatibility path, not an error.
func readEnum(inst riv.Instance, name string) interface{} {
	if h, err := inst.Enum(name); err == nil {
		if v, err := h.Value(); err == nil {
			return v
		}
	}
	return readScalar(inst.String, name)
}

func readColor(inst riv.Instance, name string) interface{} {
	h, err := inst.Color(name)
	if err != nil {
		return fmt.Sprintf("(unavailable: %v)", err)
	}
	v, err := h.Value()
	if err != nil {
		return fmt.Sprintf("(no value: %v)", err)
	}

	switch c := v.(type) {
	case string:
		// Already externalized; pass through unchanged.
		return c
	case float64:
		return argbToHex(uint32(int64(c)))
	case int:
		return argbToHex(uint32(int64(c)))
	case int64:
		return argbToHex(uint32(c))
	case uint32:
		return argbToHex(c)
	default:
		return fmt.Sprintf("(unexpected color value %T)", v)
	}
}

// argbToHex externalizes a 32-bit ARGB color as "#RRGGBB", uppercase. The
// alpha byte is deliberately discarded.
func argbToHex(argb uint32) string {
	return fmt.Sprintf("#%06X", argb&0xFFFFFF)
}
