package intent

import (
	"errors"
	"fmt"
	"strings"
)

var ErrTemplateParamMissing = errors.New("missing template parameter")

// Render substitutes every {name} placeholder in tmpl with the matching param
// value. Each placeholder is substituted exactly once, left to right;
// substituted values are never re-scanned. A placeholder absent from params is
// an error, never left in place.
func Render(tmpl string, params map[string]any) (string, error) {
	var b strings.Builder

	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String(), nil
		}

		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			b.WriteString(tmpl)
			return b.String(), nil
		}

		name := tmpl[open+1 : open+end]
		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("%w: {%s}", ErrTemplateParamMissing, name)
		}

		b.WriteString(tmpl[:open])
		fmt.Fprintf(&b, "%v", value)
		tmpl = tmpl[open+end+1:]
	}
}
