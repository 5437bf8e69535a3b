package languages

import "github.com/morozRed/overloadts/internal/parser"

// NewDefaultRegistry creates a registry with all supported language parsers.
// operatorModule names the module exporting the Operator enum; "" selects
// DefaultOperatorModule.
func NewDefaultRegistry(operatorModule string) *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewTypeScriptParser(operatorModule))

	return r
}
