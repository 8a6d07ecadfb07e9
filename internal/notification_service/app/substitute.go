package app

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Substitute replaces every {{name}} whose name is an exact key of params.
// Unknown placeholders stay as written and inserted values are not scanned again.
func Substitute(phrase string, params map[string]string) string {
	if len(params) == 0 {
		return phrase
	}
	return placeholderPattern.ReplaceAllStringFunc(phrase, func(token string) string {
		name := token[2 : len(token)-2]
		if v, ok := params[name]; ok {
			return v
		}
		return token
	})
}
