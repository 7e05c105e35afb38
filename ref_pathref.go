package normalizr

import (
	"strconv"
	"strings"

	"github.com/reoring/gonormalizr/i18n"
)

// pathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type pathRef struct {
	parts []string
}

func rootPath() *pathRef { return &pathRef{} }

func (p *pathRef) Field(name string) *pathRef {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) *pathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue creates an Issue at p with a translated message; kv are context pairs.
func (p *pathRef) Issue(code string, kv ...any) *Issue {
	ctx := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			ctx[k] = kv[i+1]
		}
	}
	return &Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, ctx), Context: ctx}
}

// Wrap reports a foreign error (custom handler, regexp compile) at p.
func (p *pathRef) Wrap(code string, err error, kv ...any) *Issue {
	it := p.Issue(code, kv...)
	it.Cause = err
	it.Message = it.Message + ": " + err.Error()
	return it
}
