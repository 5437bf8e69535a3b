package rewrite

import (
	"sort"
	"strconv"
	"strings"

	"github.com/morozRed/overloadts/internal/overload"
	"github.com/morozRed/overloadts/internal/parser"
)

// importPlan decides how a rewritten file refers to each overload owner,
// and collects the import edits that make those names available.
type importPlan struct {
	project *parser.Project
	file    *parser.File

	locals map[string]string // owner path + "#" + owner -> expression naming it
	taken  map[string]bool
	// shadowed holds names bound by a function or block scope around a
	// static overload call. Module scope names bound there are unusable.
	shadowed map[string]bool

	// extend maps an import statement index to the specifiers appended to it.
	extend map[int][]string
	added  []newImport
	// aliases are `const Owner_N = Owner;` lines planned for owners declared
	// in the file itself.
	aliases []classAlias
}

type classAlias struct {
	at    int
	local string
	owner string
}

type newImport struct {
	spec      string
	specifier string
}

func newImportPlan(project *parser.Project, file *parser.File, matches []*match) *importPlan {
	taken := make(map[string]bool, len(file.TopLevel))
	for name := range file.TopLevel {
		taken[name] = true
	}
	shadowed := make(map[string]bool)
	for _, m := range matches {
		if !m.entry.Static {
			continue
		}
		for name := range m.expr.Locals {
			shadowed[name] = true
			taken[name] = true
		}
	}
	return &importPlan{
		project:  project,
		file:     file,
		locals:   make(map[string]string),
		taken:    taken,
		shadowed: shadowed,
		extend:   make(map[int][]string),
	}
}

// local returns the expression naming the entry's owner in the file,
// planning an import the first time an owner from another file is used.
func (p *importPlan) local(e *overload.Entry) string {
	ownerPath := e.Path
	if class, ok := p.project.LookupClass(e.Owner); ok && class.Path != "" {
		ownerPath = class.Path
	}
	key := ownerPath + "#" + e.Owner
	if name, ok := p.locals[key]; ok {
		return name
	}

	name := p.plan(e.Owner, ownerPath)
	p.locals[key] = name
	return name
}

func (p *importPlan) plan(owner, ownerPath string) string {
	if ownerPath == p.file.Path {
		if !p.shadowed[owner] {
			return owner
		}
		return p.aliasClass(owner)
	}

	extendable := -1
	for i, imp := range p.file.Imports {
		if imp.TypeOnly || imp.SideEffect {
			continue
		}
		resolved, ok := p.project.ResolveModule(p.file.Path, imp.Module)
		if !ok || resolved != ownerPath {
			continue
		}
		if local, ok := namedLocal(imp, owner, p.shadowed); ok {
			return local
		}
		if imp.Namespace != "" && !p.shadowed[imp.Namespace] {
			return imp.Namespace + "." + owner
		}
		if extendable < 0 && (imp.BraceClose >= 0 || imp.DefaultEnd >= 0) {
			extendable = i
		}
	}

	local := p.freeName(owner)
	specifier := owner
	if local != owner {
		specifier = owner + " as " + local
	}
	p.taken[local] = true

	if extendable >= 0 {
		p.extend[extendable] = append(p.extend[extendable], specifier)
	} else {
		p.added = append(p.added, newImport{
			spec:      parser.ModuleSpecifier(p.file.Path, ownerPath),
			specifier: specifier,
		})
	}
	return local
}

// aliasClass binds a fresh name to a class declared in the file, right
// after its declaration.
func (p *importPlan) aliasClass(owner string) string {
	at := len(p.file.Source)
	for _, c := range p.file.Classes {
		if c.Name == owner {
			at = c.End
			break
		}
	}
	local := p.freeName(owner)
	p.taken[local] = true
	p.aliases = append(p.aliases, classAlias{at: at, local: local, owner: owner})
	return local
}

// namedLocal finds the value binding an import gives owner. Type-only
// specifiers and shadowed locals are skipped. Locals are checked in sorted
// order so aliases resolve the same way every run.
func namedLocal(imp parser.ImportDecl, owner string, shadowed map[string]bool) (string, bool) {
	locals := make([]string, 0, len(imp.Named))
	for local, imported := range imp.Named {
		if imported == owner && !imp.TypeOnlyNames[local] && !shadowed[local] {
			locals = append(locals, local)
		}
	}
	if len(locals) == 0 {
		return "", false
	}
	sort.Strings(locals)
	return locals[0], true
}

func (p *importPlan) freeName(owner string) string {
	if !p.taken[owner] {
		return owner
	}
	for n := 1; ; n++ {
		candidate := owner + "_" + strconv.Itoa(n)
		if !p.taken[candidate] {
			return candidate
		}
	}
}

// substitutions returns the text edits realizing the plan and the import
// statements they produce.
func (p *importPlan) substitutions() ([]substitution, []string) {
	src := string(p.file.Source)
	var subs []substitution
	var written []string

	indexes := make([]int, 0, len(p.extend))
	for i := range p.extend {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		imp := p.file.Imports[i]
		specifiers := strings.Join(p.extend[i], ", ")

		var sub substitution
		if imp.BraceClose >= 0 {
			at := len(strings.TrimRight(src[:imp.BraceClose], " \t\r\n"))
			sep := ", "
			if prev := src[at-1]; prev == ',' || prev == '{' {
				sep = " "
			}
			sub = substitution{start: at, end: at, text: sep + specifiers}
		} else {
			sub = substitution{start: imp.DefaultEnd, end: imp.DefaultEnd, text: ", { " + specifiers + " }"}
		}
		subs = append(subs, sub)
		written = append(written, src[imp.Start:sub.start]+sub.text+src[sub.end:imp.End])
	}

	for _, a := range p.aliases {
		line := "const " + a.local + " = " + a.owner + ";"
		subs = append(subs, substitution{start: a.at, end: a.at, text: "\n" + line})
		written = append(written, line)
	}

	if len(p.added) > 0 {
		lines := make([]string, 0, len(p.added))
		for _, imp := range p.added {
			lines = append(lines, "import { "+imp.specifier+" } from "+strconv.Quote(imp.spec)+";")
		}
		written = append(written, lines...)

		block := strings.Join(lines, "\n")
		if n := len(p.file.Imports); n > 0 {
			at := p.file.Imports[n-1].End
			subs = append(subs, substitution{start: at, end: at, text: "\n" + block})
		} else {
			subs = append(subs, substitution{start: 0, end: 0, text: block + "\n"})
		}
	}
	return subs, written
}
