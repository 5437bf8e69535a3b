package operator

import "testing"

func TestLookupRoundTrip(t *testing.T) {
	for _, op := range All() {
		got, ok := Lookup(op.String())
		if !ok || got != op {
			t.Fatalf("Lookup(%q) = %v, %v; want %v", op.String(), got, ok, op)
		}
		byName, ok := FromName(op.Name())
		if !ok || byName != op {
			t.Fatalf("FromName(%q) = %v, %v; want %v", op.Name(), byName, ok, op)
		}
	}
	if _, ok := Lookup("=>"); ok {
		t.Fatalf("expected arrow token to be unknown")
	}
}

func TestCategories(t *testing.T) {
	cases := []struct {
		literal    string
		instance   bool
		comparison bool
		binary     bool
		prefix     bool
		postfix    bool
	}{
		{literal: "+", binary: true, prefix: true},
		{literal: "-", binary: true, prefix: true},
		{literal: "*", binary: true},
		{literal: "+=", instance: true, binary: true},
		{literal: "??=", instance: true, binary: true},
		{literal: "===", comparison: true, binary: true},
		{literal: ">=", comparison: true, binary: true},
		{literal: "!", prefix: true},
		{literal: "~", prefix: true},
		{literal: "++", instance: true, postfix: true},
		{literal: "--", instance: true, postfix: true},
	}

	for _, tc := range cases {
		op, ok := Lookup(tc.literal)
		if !ok {
			t.Fatalf("unknown literal %q", tc.literal)
		}
		if op.IsInstance() != tc.instance || op.IsComparison() != tc.comparison ||
			op.Binary() != tc.binary || op.Prefix() != tc.prefix || op.Postfix() != tc.postfix {
			t.Fatalf("%q: unexpected categories instance=%v comparison=%v binary=%v prefix=%v postfix=%v",
				tc.literal, op.IsInstance(), op.IsComparison(), op.Binary(), op.Prefix(), op.Postfix())
		}
	}
}

func TestUnmarshalTextRejectsUnknown(t *testing.T) {
	var op Operator
	if err := op.UnmarshalText([]byte("<=>")); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
	var k Kind
	if err := k.UnmarshalText([]byte("sideways")); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
