package languages

import "strings"

func unquote(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

func firstLine(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, '\n'); idx != -1 {
		return strings.TrimSpace(raw[:idx])
	}
	return raw
}

// erased reports types that carry no nominal information for dispatch.
func erased(typ string) bool {
	switch typ {
	case "any", "unknown", "never", "undefined", "null":
		return true
	}
	return false
}
