package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// DuplicateKeyError reports an object key that appears more than once. Decoding
// into maps would otherwise keep only the last value without notice.
type DuplicateKeyError struct {
	Path string // JSON Pointer of the object holding the key
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("codec: duplicate key %q at %s", e.Key, e.Path)
}

type dupFrame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// checkDuplicateKeys walks the token stream of b. Syntax errors are left to the
// decoder proper.
func checkDuplicateKeys(b []byte) error {
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var stack []dupFrame

	// childPath returns the pointer of the value starting now and advances the parent.
	childPath := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.object {
			top.expectingKey = true
			return top.path + "/" + escapePointer(top.pendingKey)
		}
		p := top.path + "/" + strconv.Itoa(top.nextIndex)
		top.nextIndex++
		return p
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return nil
		}
		switch v := tok.(type) {
		case gojson.Delim:
			switch v {
			case '{':
				p := childPath()
				stack = append(stack, dupFrame{object: true, keys: make(map[string]struct{}), expectingKey: true, path: p})
			case '[':
				p := childPath()
				stack = append(stack, dupFrame{path: p})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectingKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					return &DuplicateKeyError{Path: pointerOf(top.path), Key: v}
				}
				top.keys[v] = struct{}{}
				top.pendingKey = v
				top.expectingKey = false
				continue
			}
			childPath()
		default:
			childPath()
		}
	}
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func pointerOf(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
