// Package typechain resolves a type name to its linear ancestor chain.
package typechain

// BaseLookup reports the base class of a named class declaration.
type BaseLookup interface {
	BaseOf(typeName string) (string, bool)
}

// Resolver caches ancestor chains by type name. It is not safe for
// concurrent use; Reset must be called whenever a class hierarchy may have
// changed.
type Resolver struct {
	lookup BaseLookup
	cache  map[string][]string
}

func New(lookup BaseLookup) *Resolver {
	return &Resolver{lookup: lookup, cache: make(map[string][]string)}
}

// Chain returns name followed by its ancestors, most specific first.
// Primitive and unknown types yield a single-element chain.
func (r *Resolver) Chain(name string) []string {
	if name == "" {
		return nil
	}
	if chain, ok := r.cache[name]; ok {
		return chain
	}

	chain := []string{name}
	seen := map[string]bool{name: true}
	for current := name; ; {
		base, ok := r.lookup.BaseOf(current)
		if !ok || base == "" || seen[base] {
			break
		}
		seen[base] = true
		chain = append(chain, base)
		current = base
	}

	r.cache[name] = chain
	return chain
}

// Reset drops every cached chain.
func (r *Resolver) Reset() {
	r.cache = make(map[string][]string)
}

// Len reports how many chains are cached.
func (r *Resolver) Len() int {
	return len(r.cache)
}
