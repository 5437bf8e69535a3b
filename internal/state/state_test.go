package state

import (
	"reflect"
	"testing"
)

func TestChangedAndDeletedFiles(t *testing.T) {
	s := NewState()
	s.SetFile("a.ts", FileState{Hash: "a1"})
	s.SetFile("b.ts", FileState{Hash: "b1"})
	s.SetFile("c.ts", FileState{Hash: "c1"})

	changed := s.ChangedFiles(map[string]string{
		"a.ts": "a1",
		"b.ts": "b2",
		"d.ts": "d1",
	})
	if want := []string{"b.ts", "d.ts"}; !reflect.DeepEqual(changed, want) {
		t.Fatalf("expected changed %v, got %v", want, changed)
	}

	deleted := s.DeletedFiles(map[string]bool{"a.ts": true, "b.ts": true, "d.ts": true})
	if want := []string{"c.ts"}; !reflect.DeepEqual(deleted, want) {
		t.Fatalf("expected deleted %v, got %v", want, deleted)
	}
}

func TestImpactedFilesFollowImporters(t *testing.T) {
	s := NewState()
	s.Files["main.ts"] = FileState{Dependencies: []string{"vec2.ts"}}
	s.Files["app.ts"] = FileState{Dependencies: []string{"main.ts"}}
	s.Files["other.ts"] = FileState{Dependencies: []string{"x.ts"}}

	impacted := s.ImpactedFiles([]string{"vec2.ts"}, nil)
	want := []string{"app.ts", "main.ts", "vec2.ts"}
	if !reflect.DeepEqual(impacted, want) {
		t.Fatalf("expected impacted %v, got %v", want, impacted)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	empty, err := Load(dir)
	if err != nil {
		t.Fatalf("load missing state: %v", err)
	}
	if len(empty.Files) != 0 || empty.Version != CurrentStateVersion {
		t.Fatalf("expected empty state, got %+v", empty)
	}

	s := NewState()
	s.SetFile("main.ts", FileState{Hash: "h", Dependencies: []string{"vec2.ts"}, Rewrites: 3})
	if err := s.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.Files["main.ts"]
	if got.Hash != "h" || got.Rewrites != 3 || len(got.Dependencies) != 1 {
		t.Fatalf("unexpected round-tripped state %+v", got)
	}
	if loaded.HasChanged("main.ts", "h") || !loaded.HasChanged("main.ts", "other") {
		t.Fatalf("unexpected change detection")
	}
}
