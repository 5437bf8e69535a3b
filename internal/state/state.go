// Package state persists what the last rewrite run saw, so later runs can
// tell which sources changed and which rewritten outputs went stale.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	StateFile           = ".overloadts-state.json"
	CurrentStateVersion = "1"
)

// FileState tracks one source file as of the last run.
type FileState struct {
	Hash string `json:"hash"`
	// Dependencies are project files this file imports. A change to one of
	// them can change how this file's operators resolve.
	Dependencies []string  `json:"dependencies,omitempty"`
	Overloads    int       `json:"overloads,omitempty"`
	Rewrites     int       `json:"rewrites,omitempty"`
	OutputHash   string    `json:"output_hash,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// State tracks every file of the last run.
type State struct {
	Version   string               `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
	Files     map[string]FileState `json:"files"`
}

func NewState() *State {
	return &State{
		Version: CurrentStateVersion,
		Files:   make(map[string]FileState),
	}
}

// Load reads the state file in dir. A missing file yields an empty state.
func Load(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, StateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Files == nil {
		st.Files = make(map[string]FileState)
	}
	if st.Version == "" {
		st.Version = CurrentStateVersion
	}
	return &st, nil
}

// Save writes the state file into dir, creating dir when needed.
func (s *State) Save(dir string) error {
	if s.Version == "" {
		s.Version = CurrentStateVersion
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	s.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, StateFile), data, 0644)
}

func (s *State) SetFile(file string, fs FileState) {
	fs.UpdatedAt = time.Now()
	s.Files[file] = fs
}

// HasChanged reports whether file is new or its hash differs.
func (s *State) HasChanged(file, currentHash string) bool {
	fs, ok := s.Files[file]
	return !ok || fs.Hash != currentHash
}

func (s *State) RemoveFile(file string) {
	delete(s.Files, file)
}

// ChangedFiles returns new or modified files, sorted.
func (s *State) ChangedFiles(currentHashes map[string]string) []string {
	changed := make([]string, 0)
	for file, hash := range currentHashes {
		if s.HasChanged(file, hash) {
			changed = append(changed, file)
		}
	}
	sort.Strings(changed)
	return changed
}

// DeletedFiles returns tracked files that no longer exist, sorted.
func (s *State) DeletedFiles(currentFiles map[string]bool) []string {
	deleted := make([]string, 0)
	for file := range s.Files {
		if !currentFiles[file] {
			deleted = append(deleted, file)
		}
	}
	sort.Strings(deleted)
	return deleted
}

// ImpactedFiles returns changed and deleted files plus every file that
// transitively imports one of them.
func (s *State) ImpactedFiles(changedFiles, deletedFiles []string) []string {
	reverse := make(map[string][]string)
	for file, fileState := range s.Files {
		for _, dep := range fileState.Dependencies {
			reverse[dep] = append(reverse[dep], file)
		}
	}

	impacted := make(map[string]bool)
	queue := make([]string, 0, len(changedFiles)+len(deletedFiles))
	for _, file := range append(append([]string{}, changedFiles...), deletedFiles...) {
		if !impacted[file] {
			impacted[file] = true
			queue = append(queue, file)
		}
	}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		for _, depender := range reverse[file] {
			if impacted[depender] {
				continue
			}
			impacted[depender] = true
			queue = append(queue, depender)
		}
	}

	out := make([]string, 0, len(impacted))
	for file := range impacted {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}
