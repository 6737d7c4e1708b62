package inspect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/riv-inspector/backend/internal/riv"
)

// baselineTypeCodes are the numeric input-type codes that have proven stable
// across runtime builds. Codes outside this table are learned per parse by
// sampling one state machine, never guessed.
var baselineTypeCodes = map[int]string{
	56: "Number",
	58: "Trigger",
	59: "Boolean",
}

const unknownTypeName = "Unknown"

// calibration is the per-parse type-code state: the effective baseline
// (hard-coded entries layered over optional overrides) plus the dynamic map
// learned from one sampled state machine. It is never shared across parses.
type calibration struct {
	baseline map[int]string
	learned  map[int]string
}

func newCalibration(overrides map[int]string) *calibration {
	base := make(map[int]string, len(baselineTypeCodes)+len(overrides))
	for code, name := range overrides {
		base[code] = name
	}
	for code, name := range baselineTypeCodes {
		base[code] = name
	}
	return &calibration{baseline: base, learned: make(map[int]string)}
}

// typeName translates a numeric code: baseline first, then the dynamic map,
// else "Unknown".
func (c *calibration) typeName(code int) string {
	if name, ok := c.baseline[code]; ok {
		return name
	}
	if name, ok := c.learned[code]; ok {
		return name
	}
	return unknownTypeName
}

// observe records a learned code. First writer wins: a later conflicting
// observation for an already-learned code is logged and discarded.
func (c *calibration) observe(code int, name string) {
	if _, ok := c.baseline[code]; ok {
		return
	}
	if prev, ok := c.learned[code]; ok {
		if prev != name {
			fmt.Printf("[Calibrate] code %d already mapped to %s; ignoring %s\n", code, prev, name)
		}
		return
	}
	c.learned[code] = name
}

// sample cross-references one state machine's strongly-typed inputs against
// its raw records, joining by input name. Runs at most once per parse, before
// artboard assembly. Codes unique to unsampled state machines in the same
// file stay "Unknown"; that is accepted degraded behavior.
func (c *calibration) sample(f riv.File, artboardName, stateMachineName string) {
	sm := findStateMachine(f, artboardName, stateMachineName)
	if sm == nil {
		fmt.Printf("[Calibrate] state machine %q on %q not found; dynamic map stays empty\n", stateMachineName, artboardName)
		return
	}

	typedByName := make(map[string]string)
	for _, in := range sm.Inputs() {
		typedByName[in.Name] = in.TypeName
	}
	for _, raw := range sm.RawInputs() {
		name, ok := typedByName[raw.Name]
		if !ok || name == "" {
			continue
		}
		c.observe(raw.TypeCode, name)
	}
}

func findStateMachine(f riv.File, artboardName, stateMachineName string) riv.StateMachine {
	for i := 0; i < f.ArtboardCount(); i++ {
		a, err := f.ArtboardAt(i)
		if err != nil || a == nil || a.Name() != artboardName {
			continue
		}
		for j := 0; j < a.StateMachineCount(); j++ {
			sm, err := a.StateMachineAt(j)
			if err != nil || sm == nil {
				continue
			}
			if sm.Name() == stateMachineName {
				return sm
			}
		}
	}
	return nil
}

// typeCodeOverridesFile is the optional YAML shape extending the baseline
// table with deployment-specific code mappings.
type typeCodeOverridesFile struct {
	Codes map[int]string `yaml:"codes"`
}

// LoadTypeCodeOverrides reads extra code mappings from a YAML file. Hard-coded
// baseline entries always win over overrides.
func LoadTypeCodeOverrides(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f typeCodeOverridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing type code overrides: %w", err)
	}
	return f.Codes, nil
}
