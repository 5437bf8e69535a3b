package typechain

import (
	"reflect"
	"testing"
)

type bases map[string]string

func (b bases) BaseOf(name string) (string, bool) {
	base, ok := b[name]
	return base, ok
}

func TestChain(t *testing.T) {
	lookup := bases{"Puppy": "Dog", "Dog": "Animal", "Animal": ""}
	r := New(lookup)

	cases := []struct {
		name string
		want []string
	}{
		{name: "Puppy", want: []string{"Puppy", "Dog", "Animal"}},
		{name: "Animal", want: []string{"Animal"}},
		{name: "number", want: []string{"number"}},
		{name: "", want: nil},
	}
	for _, tc := range cases {
		if got := r.Chain(tc.name); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Chain(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestChainCycleTerminates(t *testing.T) {
	r := New(bases{"A": "B", "B": "A"})
	if got := r.Chain("A"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("unexpected chain for cyclic hierarchy: %v", got)
	}
}

func TestResetDropsStaleChains(t *testing.T) {
	lookup := bases{"Child": "Base"}
	r := New(lookup)
	if got := r.Chain("Child"); len(got) != 2 {
		t.Fatalf("unexpected chain %v", got)
	}

	lookup["Child"] = "Other"
	if got := r.Chain("Child"); got[1] != "Base" {
		t.Fatalf("expected cached chain before reset, got %v", got)
	}

	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("expected empty cache after reset")
	}
	if got := r.Chain("Child"); !reflect.DeepEqual(got, []string{"Child", "Other"}) {
		t.Fatalf("expected fresh chain after reset, got %v", got)
	}
}
