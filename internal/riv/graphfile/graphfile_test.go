package graphfile

import (
	"encoding/json"
	"testing"

	"github.com/riv-inspector/backend/internal/riv"
)

func mustJSON(t *testing.T, g Graph) []byte {
	t.Helper()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Failed to marshal graph: %v", err)
	}
	return data
}

func loadGraph(t *testing.T, g Graph) riv.File {
	t.Helper()
	l := New()
	var got riv.File
	var loadErr error
	returned := l.Load(mustJSON(t, g), riv.LoadOptions{}, func(f riv.File, err error) {
		got = f
		loadErr = err
	})
	if loadErr != nil {
		t.Fatalf("Load failed: %v", loadErr)
	}
	if got == nil {
		got = returned
	}
	if got == nil {
		got = l.Session()
	}
	if got == nil {
		t.Fatal("No file handle delivered")
	}
	return got
}

func TestLoadDeliveryModes(t *testing.T) {
	base := Graph{
		Artboards: []ArtboardDef{{Name: "Main"}},
	}

	t.Run("callback delivery", func(t *testing.T) {
		g := base
		g.Delivery = "callback"
		l := New()
		var viaCallback riv.File
		returned := l.Load(mustJSON(t, g), riv.LoadOptions{}, func(f riv.File, err error) {
			viaCallback = f
		})
		if viaCallback == nil {
			t.Error("Expected file via callback")
		}
		if returned != nil {
			t.Error("Expected nil return value in callback mode")
		}
		if l.Session() != nil {
			t.Error("Expected nil session in callback mode")
		}
	})

	t.Run("return delivery", func(t *testing.T) {
		g := base
		g.Delivery = "return"
		l := New()
		var viaCallback riv.File
		returned := l.Load(mustJSON(t, g), riv.LoadOptions{}, func(f riv.File, err error) {
			viaCallback = f
		})
		if viaCallback != nil {
			t.Error("Expected nil callback argument in return mode")
		}
		if returned == nil {
			t.Error("Expected file via return value")
		}
	})

	t.Run("session delivery", func(t *testing.T) {
		g := base
		g.Delivery = "session"
		l := New()
		returned := l.Load(mustJSON(t, g), riv.LoadOptions{}, func(f riv.File, err error) {})
		if returned != nil {
			t.Error("Expected nil return value in session mode")
		}
		if l.Session() == nil {
			t.Error("Expected file via loader session")
		}
	})
}

func TestLoadDecodeError(t *testing.T) {
	l := New()
	called := false
	var loadErr error
	returned := l.Load([]byte("{not json"), riv.LoadOptions{}, func(f riv.File, err error) {
		called = true
		loadErr = err
	})
	if !called {
		t.Fatal("Expected done callback on decode error")
	}
	if loadErr == nil {
		t.Error("Expected error for malformed input")
	}
	if returned != nil {
		t.Error("Expected nil return on decode error")
	}
}

func TestLoadAssetHook(t *testing.T) {
	g := Graph{
		Artboards: []ArtboardDef{{Name: "Main"}},
		Assets: []AssetDef{
			{Name: "logo.png", CDNUUID: "uuid-1"},
			{Name: "font.ttf", CDNUUID: "uuid-2"},
		},
	}

	var seen []riv.Asset
	l := New()
	l.Load(mustJSON(t, g), riv.LoadOptions{OnAsset: func(a riv.Asset) bool {
		seen = append(seen, a)
		return true
	}}, func(f riv.File, err error) {})

	if len(seen) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(seen))
	}
	if seen[0].Name != "logo.png" || seen[0].CDNUUID != "uuid-1" {
		t.Errorf("Unexpected first asset: %+v", seen[0])
	}
}

func TestInstanceIdentity(t *testing.T) {
	// Two paths to the same instance id must yield the same handle; the
	// resolver's cycle guard depends on that.
	g := Graph{
		Artboards: []ArtboardDef{{Name: "Main", DefaultInstance: "root"}},
		Blueprints: []BlueprintDef{
			{Name: "Root", Properties: []PropertyDef{
				{Name: "a", Type: "viewModel"},
				{Name: "b", Type: "viewModel"},
			}},
			{Name: "Child", Properties: []PropertyDef{{Name: "x", Type: "number"}}},
		},
		Instances: []InstanceDef{
			{ID: "root", Name: "root", Blueprint: "Root", Nested: map[string]string{"a": "shared", "b": "shared"}},
			{ID: "shared", Name: "shared", Blueprint: "Child", Values: map[string]interface{}{"x": 1.0}},
		},
	}

	f := loadGraph(t, g)
	active, err := f.ActiveArtboard()
	if err != nil {
		t.Fatalf("ActiveArtboard failed: %v", err)
	}
	root, err := f.DefaultInstance(active)
	if err != nil {
		t.Fatalf("DefaultInstance failed: %v", err)
	}

	a, err := root.ViewModel("a")
	if err != nil {
		t.Fatalf("ViewModel(a) failed: %v", err)
	}
	b, err := root.ViewModel("b")
	if err != nil {
		t.Fatalf("ViewModel(b) failed: %v", err)
	}
	if a != b {
		t.Error("Expected both paths to resolve to the same instance handle")
	}
}

func TestIndexedProperties(t *testing.T) {
	g := Graph{
		Artboards: []ArtboardDef{{Name: "Main"}},
		Blueprints: []BlueprintDef{
			{
				Name: "Indexed",
				Properties: []PropertyDef{
					{Name: "volume", Type: "number"},
					{Name: "label", Type: "string"},
				},
				IndexedProperties: true,
			},
		},
	}

	f := loadGraph(t, g)
	def, err := f.ViewModelAt(0)
	if err != nil {
		t.Fatalf("ViewModelAt failed: %v", err)
	}

	if _, ok := def.Properties(); ok {
		t.Error("Expected array shape to be unavailable")
	}
	if def.PropertyCount() != 2 {
		t.Errorf("Expected 2 properties, got %d", def.PropertyCount())
	}
	p, err := def.PropertyAt(0)
	if err != nil {
		t.Fatalf("PropertyAt failed: %v", err)
	}
	if p.Name != "volume" || p.Type != riv.TypeNumber {
		t.Errorf("Unexpected property: %+v", p)
	}
	if _, err := def.PropertyAt(5); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestHideBlueprint(t *testing.T) {
	g := Graph{
		Artboards: []ArtboardDef{{Name: "Main", DefaultInstance: "i1"}},
		Blueprints: []BlueprintDef{
			{Name: "BP", Properties: []PropertyDef{{Name: "x", Type: "number"}}},
		},
		Instances: []InstanceDef{
			{ID: "i1", Name: "i1", Blueprint: "BP", HideBlueprint: true, Values: map[string]interface{}{"x": 7.0}},
		},
	}

	f := loadGraph(t, g)
	active, _ := f.ActiveArtboard()
	inst, err := f.DefaultInstance(active)
	if err != nil {
		t.Fatalf("DefaultInstance failed: %v", err)
	}

	if _, ok := inst.Definition(); ok {
		t.Error("Expected hidden blueprint back-reference")
	}
	// The declaration shape still mirrors the blueprint.
	props, ok := inst.Properties()
	if !ok || len(props) != 1 {
		t.Errorf("Expected 1 declared property, got %d (ok=%v)", len(props), ok)
	}
}

func TestAccessorFailureModes(t *testing.T) {
	g := Graph{
		Artboards: []ArtboardDef{{Name: "Main", DefaultInstance: "i1"}},
		Blueprints: []BlueprintDef{
			{Name: "BP", Properties: []PropertyDef{
				{Name: "good", Type: "number"},
				{Name: "bad", Type: "number"},
				{Name: "boom", Type: "number"},
				{Name: "empty", Type: "number"},
			}},
		},
		Instances: []InstanceDef{
			{
				ID: "i1", Name: "i1", Blueprint: "BP",
				Values:    map[string]interface{}{"good": 42.0},
				Failing:   []string{"bad"},
				Panicking: []string{"boom"},
			},
		},
	}

	f := loadGraph(t, g)
	active, _ := f.ActiveArtboard()
	inst, _ := f.DefaultInstance(active)

	h, err := inst.Number("good")
	if err != nil {
		t.Fatalf("Number(good) failed: %v", err)
	}
	v, err := h.Value()
	if err != nil || v != 42.0 {
		t.Errorf("Expected 42.0, got %v (err=%v)", v, err)
	}

	if _, err := inst.Number("bad"); err == nil {
		t.Error("Expected error from failing accessor")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic from panicking accessor")
			}
		}()
		inst.Number("boom")
	}()

	// Declared but value never set: handle succeeds, Value errors.
	h, err = inst.Number("empty")
	if err != nil {
		t.Fatalf("Number(empty) failed: %v", err)
	}
	if _, err := h.Value(); err == nil {
		t.Error("Expected error reading missing value")
	}

	// Undeclared property: no accessor at all.
	if _, err := inst.Number("nonexistent"); err == nil {
		t.Error("Expected error for undeclared property")
	}
}

func TestNoEnumAccessor(t *testing.T) {
	g := Graph{
		Artboards: []ArtboardDef{{Name: "Main", DefaultInstance: "i1"}},
		Blueprints: []BlueprintDef{
			{Name: "BP", Properties: []PropertyDef{{Name: "mode", Type: "enum"}}},
		},
		Instances: []InstanceDef{
			{
				ID: "i1", Name: "i1", Blueprint: "BP",
				Values:         map[string]interface{}{"mode": "dark"},
				NoEnumAccessor: []string{"mode"},
			},
		},
	}

	f := loadGraph(t, g)
	active, _ := f.ActiveArtboard()
	inst, _ := f.DefaultInstance(active)

	if _, err := inst.Enum("mode"); err == nil {
		t.Error("Expected enum accessor to be unavailable")
	}
	// The string accessor under the same name still works.
	h, err := inst.String("mode")
	if err != nil {
		t.Fatalf("String(mode) failed: %v", err)
	}
	v, err := h.Value()
	if err != nil || v != "dark" {
		t.Errorf("Expected 'dark', got %v (err=%v)", v, err)
	}
}

func TestHideViewModelCount(t *testing.T) {
	g := Graph{
		HideViewModelCount: true,
		Artboards:          []ArtboardDef{{Name: "Main"}},
		Blueprints: []BlueprintDef{
			{Name: "A", Properties: []PropertyDef{{Name: "x", Type: "number"}}},
			{Name: "B", Properties: []PropertyDef{{Name: "y", Type: "string"}}},
		},
	}

	f := loadGraph(t, g)
	if _, ok := f.ViewModelCount(); ok {
		t.Error("Expected count accessor to report unavailable")
	}
	// Index access keeps working past the hidden count.
	def, err := f.ViewModelAt(1)
	if err != nil || def.Name() != "B" {
		t.Errorf("Expected definition B, got %v (err=%v)", def, err)
	}
	if _, err := f.ViewModelAt(2); err == nil {
		t.Error("Expected error past the valid range")
	}
}

func TestRegistryRegistration(t *testing.T) {
	loader, err := riv.GetGlobalRegistry().Open("graph")
	if err != nil {
		t.Fatalf("Expected graph binding to be registered: %v", err)
	}
	if loader == nil {
		t.Fatal("Expected non-nil loader")
	}
	// Each Open yields a fresh loader.
	other, _ := riv.GetGlobalRegistry().Open("graph")
	if loader == other {
		t.Error("Expected distinct loader instances per Open")
	}
}
