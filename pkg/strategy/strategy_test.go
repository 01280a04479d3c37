package strategy

import (
	"errors"
	"math"
	"strings"
	"testing"
)

type fixed struct {
	*BaseStrategy
	action Action
}

func (f fixed) Evaluate(Bar) Action { return f.action }
func (f fixed) RequiredFeatures() []string { return nil }

func TestBarFeature(t *testing.T) {
	b := Bar{Close: 1, Features: map[string]float64{"a": 2, "nan": math.NaN()}}
	if v, ok := b.Feature("a"); !ok || v != 2 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if _, ok := b.Feature("nan"); ok {
		t.Fatal("NaN feature should read as missing")
	}
	if _, ok := b.Feature("missing"); ok {
		t.Fatal("missing feature should read as missing")
	}
	if !b.HasPrice() {
		t.Fatal("finite close should have a price")
	}
	for _, c := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if (Bar{Close: c}).HasPrice() {
			t.Fatalf("close %v should not have a price", c)
		}
	}
}

func TestSignalFunc(t *testing.T) {
	var src SignalSource = SignalFunc(func(b Bar) Action {
		if b.Close > 10 {
			return ActionSell
		}
		return ActionBuy
	})
	if src.Evaluate(Bar{Close: 11}) != ActionSell || src.Evaluate(Bar{Close: 9}) != ActionBuy {
		t.Fatal("SignalFunc did not delegate")
	}
}

func TestParams(t *testing.T) {
	p := map[string]interface{}{"i": 3, "f": 1.5, "s": "x", "i64": int64(4)}

	if v, err := ParamInt(p, "i64"); err != nil || v != 4 {
		t.Fatalf("i64 = %v, %v", v, err)
	}
	if v, err := ParamFloat64(p, "i"); err != nil || v != 3 {
		t.Fatalf("i as float = %v, %v", v, err)
	}
	if _, err := ParamFloat64(p, "s"); err == nil {
		t.Fatal("expected type error")
	}
	if _, err := ParamInt(p, "nope"); err == nil {
		t.Fatal("expected missing error")
	}
	if ParamIntOr(p, "s", 9) != 9 || ParamFloat64Or(p, "f", 0) != 1.5 {
		t.Fatal("fallbacks misbehaved")
	}

	base := NewBaseStrategy("x", p)
	if v, err := base.GetParameterInt("i"); err != nil || v != 3 || base.GetName() != "x" {
		t.Fatalf("base = %v, %v", v, err)
	}
	if NewBaseStrategy("y", nil).GetParameters() == nil {
		t.Fatal("nil parameters should become an empty map")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("hold", func(map[string]interface{}) (Strategy, error) {
		return fixed{BaseStrategy: NewBaseStrategy("hold", nil)}, nil
	})
	boom := errors.New("boom")
	r.Register("broken", func(map[string]interface{}) (Strategy, error) {
		return nil, boom
	})

	s, err := r.Build("hold", nil)
	if err != nil || s.GetName() != "hold" || s.Evaluate(Bar{}) != ActionNone {
		t.Fatalf("Build(hold) = %v, %v", s, err)
	}
	if _, err := r.Build("broken", nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	_, err = r.Build("missing", nil)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("unknown strategy error should list the registry: %v", err)
	}
	if got := r.List(); len(got) != 2 || got[0] != "broken" {
		t.Fatalf("List = %v", got)
	}
}
