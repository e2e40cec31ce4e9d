package render

import (
	"sort"
	"strings"

	"github.com/arthur-debert/binscript/pkg/errors"
)

type segment struct {
	text  string
	isKey bool
}

// scan splits text into literal and key segments.
func scan(text string) ([]segment, error) {
	var segments []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '%' {
			lit.WriteByte(c)
			continue
		}
		if i+1 >= len(text) {
			return nil, syntaxError(i, "incomplete format")
		}
		switch text[i+1] {
		case '%':
			lit.WriteByte('%')
			i++
		case '(':
			end := matchParen(text, i+1)
			if end < 0 {
				return nil, syntaxError(i, "incomplete format key")
			}
			if end+1 >= len(text) {
				return nil, syntaxError(i, "incomplete format")
			}
			if text[end+1] != 's' {
				return nil, syntaxError(end+1, "unsupported conversion %q, only %%(key)s is allowed", text[end+1])
			}
			flush()
			segments = append(segments, segment{text: text[i+2 : end], isKey: true})
			i = end + 1
		default:
			return nil, syntaxError(i+1, "unsupported format character %q", text[i+1])
		}
	}
	flush()
	return segments, nil
}

// matchParen returns the index of the ')' closing the '(' at open, or -1.
func matchParen(text string, open int) int {
	depth := 0
	for j := open; j < len(text); j++ {
		switch text[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func syntaxError(offset int, format string, args ...interface{}) *errors.RecipeError {
	return errors.Newf(errors.ErrTemplateSyntax, format, args...).WithDetail("offset", offset)
}

// Placeholders returns the keys referenced by text in first-appearance order,
// each listed once.
func Placeholders(text string) ([]string, error) {
	segments, err := scan(text)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var keys []string
	for _, s := range segments {
		if s.isKey && !seen[s.text] {
			seen[s.text] = true
			keys = append(keys, s.text)
		}
	}
	return keys, nil
}

// Missing returns the sorted keys referenced by text that ctx lacks.
func Missing(text string, ctx Context) ([]string, error) {
	keys, err := Placeholders(text)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, k := range keys {
		if _, ok := ctx[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// Render substitutes every placeholder in text with its value from ctx.
// Nothing is rendered unless all referenced keys are present.
func Render(text string, ctx Context) (string, error) {
	segments, err := scan(text)
	if err != nil {
		return "", err
	}

	var missing []string
	seen := make(map[string]bool)
	for _, s := range segments {
		if !s.isKey || seen[s.text] {
			continue
		}
		seen[s.text] = true
		if _, ok := ctx[s.text]; !ok {
			missing = append(missing, s.text)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", errors.Newf(errors.ErrContextKey,
			"template references undefined keys: %s", strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}

	var out strings.Builder
	out.Grow(len(text))
	for _, s := range segments {
		if s.isKey {
			out.WriteString(ctx[s.text])
		} else {
			out.WriteString(s.text)
		}
	}
	return out.String(), nil
}
