package includepicker

import "testing"

func TestMakeTransitiveIncludeMapFollowsPrivateChain(t *testing.T) {
	basic := IncludeMap{
		"a": {"b"},       // a -> b (private hop)
		"b": {"<c>"},     // b -> <c> (public)
	}
	closed, err := makeTransitiveIncludeMap(basic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := closed["a"]; len(got) != 1 || got[0] != "<c>" {
		t.Errorf("a's closure = %v, want [<c>]", got)
	}
	if got := closed["b"]; len(got) != 1 || got[0] != "<c>" {
		t.Errorf("b's closure = %v, want [<c>]", got)
	}
}

func TestMakeTransitiveIncludeMapDetectsCycle(t *testing.T) {
	basic := IncludeMap{
		"a": {"b"},
		"b": {"a"},
	}
	if _, err := makeTransitiveIncludeMap(basic); err == nil {
		t.Error("expected a cycle error")
	}
}

func TestHeadersForPathStaticCppMap(t *testing.T) {
	p := NewIncludePicker()
	if err := p.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	got := p.HeadersForPath("bits/stl_vector.h", nil)
	if len(got) == 0 || got[0] != "<vector>" {
		t.Errorf("HeadersForPath(bits/stl_vector.h) = %v, want [<vector> ...]", got)
	}
}

func TestAddDirectIncludeLearnsPublicExposure(t *testing.T) {
	p := NewIncludePicker()
	if err := p.AddDirectInclude("mylib/public/api.h", "mylib/internal/impl.h"); err != nil {
		t.Fatalf("AddDirectInclude: %v", err)
	}
	if err := p.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	got := p.HeadersForPath("mylib/internal/impl.h", nil)
	if len(got) != 1 || got[0] != "\"mylib/public/api.h\"" {
		t.Errorf("HeadersForPath(mylib/internal/impl.h) = %v, want [\"mylib/public/api.h\"]", got)
	}
}

func TestMutationAfterFinalizeFails(t *testing.T) {
	p := NewIncludePicker()
	if err := p.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := p.AddMapping("a", "<b>"); err == nil {
		t.Error("expected PickerAlreadyFinalized error after Finalize")
	}
}
