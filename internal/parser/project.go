package parser

import (
	"path"
	"sort"
	"strings"
)

// resolveExtensions are tried, in order, when an import specifier omits
// the file extension.
var resolveExtensions = []string{".ts", ".tsx", "/index.ts", "/index.tsx"}

// Project is the set of parsed files of one session. It answers the
// cross-file questions the engine asks: which class owns a type name, and
// which file an import specifier refers to. Paths use forward slashes.
type Project struct {
	files   map[string]*File
	classes map[string]*ClassDecl
}

func NewProject() *Project {
	return &Project{files: make(map[string]*File)}
}

// AddFile stores f, replacing any previous version with the same path.
func (p *Project) AddFile(f *File) {
	p.files[f.Path] = f
	p.classes = nil
}

// RemoveFile forgets a file. It reports whether the file was known.
func (p *Project) RemoveFile(filePath string) bool {
	if _, ok := p.files[filePath]; !ok {
		return false
	}
	delete(p.files, filePath)
	p.classes = nil
	return true
}

func (p *Project) File(filePath string) (*File, bool) {
	f, ok := p.files[filePath]
	return f, ok
}

// Files returns all files ordered by path.
func (p *Project) Files() []*File {
	out := make([]*File, 0, len(p.files))
	for _, f := range p.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LookupClass returns the class declaration owning a type name. When two
// files declare the same name the one with the smaller path wins.
func (p *Project) LookupClass(name string) (*ClassDecl, bool) {
	if p.classes == nil {
		p.classes = make(map[string]*ClassDecl)
		for _, f := range p.Files() {
			for _, class := range f.Classes {
				if _, taken := p.classes[class.Name]; !taken {
					p.classes[class.Name] = class
				}
			}
		}
	}
	class, ok := p.classes[name]
	return class, ok
}

// BaseOf implements typechain.BaseLookup.
func (p *Project) BaseOf(typeName string) (string, bool) {
	class, ok := p.LookupClass(typeName)
	if !ok {
		return "", false
	}
	return class.Base, true
}

// ResolveModule maps an import specifier written in fromPath to the path
// of a project file. Only relative specifiers resolve.
func (p *Project) ResolveModule(fromPath, spec string) (string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return "", false
	}
	base := path.Join(path.Dir(fromPath), spec)
	if _, ok := p.files[base]; ok {
		return base, true
	}
	// "./vec.js" conventionally names vec.ts under ESM resolution.
	trimmed := strings.TrimSuffix(base, path.Ext(base))
	for _, candidate := range []string{base, trimmed} {
		for _, ext := range resolveExtensions {
			if _, ok := p.files[candidate+ext]; ok {
				return candidate + ext, true
			}
		}
	}
	return "", false
}

// ModuleSpecifier returns the relative import specifier fromPath would use
// to import toPath, e.g. "./math/vec".
func ModuleSpecifier(fromPath, toPath string) string {
	fromDir := strings.Split(path.Dir(fromPath), "/")
	target := strings.Split(strings.TrimSuffix(toPath, path.Ext(toPath)), "/")
	if fromDir[0] == "." {
		fromDir = fromDir[:0]
	}

	common := 0
	for common < len(fromDir) && common < len(target)-1 && fromDir[common] == target[common] {
		common++
	}

	parts := make([]string, 0, len(fromDir)-common+len(target)-common)
	for i := common; i < len(fromDir); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)
	if parts[len(parts)-1] == "index" && len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}

	spec := strings.Join(parts, "/")
	if !strings.HasPrefix(spec, "../") && spec != ".." {
		spec = "./" + spec
	}
	return spec
}
