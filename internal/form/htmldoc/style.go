package htmldoc

import "strings"

type declaration struct {
	prop, value string
}

// parseStyle splits an inline style attribute into declarations. Property
// names are lowercased; malformed entries are dropped. Semicolons inside
// quoted strings or parentheses belong to the value, as in
// url("data:image/png;base64,...").
func parseStyle(s string) []declaration {
	var decls []declaration
	for _, part := range splitDeclarations(s) {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		decls = append(decls, declaration{prop, value})
	}
	return decls
}

func splitDeclarations(s string) []string {
	var (
		parts []string
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ';' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// setProperty replaces prop in place, appends it, or removes it when value
// is empty.
func setProperty(decls []declaration, prop, value string) []declaration {
	prop = strings.ToLower(prop)
	for i, d := range decls {
		if d.prop != prop {
			continue
		}
		if value == "" {
			return append(decls[:i], decls[i+1:]...)
		}
		decls[i].value = value
		return decls
	}
	if value == "" {
		return decls
	}
	return append(decls, declaration{prop, value})
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	return strings.Join(parts, "; ")
}
