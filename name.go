package avro

import "regexp"

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isValidIdentifier reports whether s matches the Avro name-component
// grammar [A-Za-z_][A-Za-z0-9_]*, used for record/enum/fixed name
// components and for enum symbols.
func isValidIdentifier(s string) bool {
	return s != "" && identifierRE.MatchString(s)
}

func stringsToAny(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseAliasesJSON(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	return stringsToAny(arr)
}
