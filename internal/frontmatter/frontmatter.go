// Package frontmatter implements the restricted metadata block used at the top
// of research documents. The format is deliberately not full YAML: one
// `key: value` pair per line between `---` marker lines, where a value is
// either a scalar or a single-level `["a", "b"]` string list. Documents are
// hand-edited, so Parse is lenient; Serialize is the exact inverse for every
// value shape Parse can produce.
package frontmatter

import (
	"strconv"
	"strings"
)

// Marker delimits the metadata block. It must occupy a line by itself.
const Marker = "---"

// Value is a single frontmatter value: a scalar string or a string list.
// Quoted records whether a scalar renders with surrounding double quotes,
// which is what makes Parse(Serialize(f)) lossless.
type Value struct {
	Str    string
	List   []string
	IsList bool
	Quoted bool
}

// String returns a quoted scalar value.
func String(s string) Value { return Value{Str: s, Quoted: true} }

// Bare returns an unquoted scalar value (numbers, empty placeholders).
func Bare(s string) Value { return Value{Str: s} }

// Int returns an unquoted numeric scalar value.
func Int(n int) Value { return Value{Str: strconv.Itoa(n)} }

// List returns a string-list value.
func List(items ...string) Value { return Value{List: items, IsList: true} }

// Fields is an ordered set of frontmatter key/value pairs. Order is
// preserved across Parse/Serialize so updates do not shuffle hand-written
// metadata blocks.
type Fields struct {
	keys   []string
	values map[string]Value
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{values: make(map[string]Value)}
}

// Set stores a value, keeping the position of an existing key and appending
// new keys at the end.
func (f *Fields) Set(key string, v Value) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
}

// Get returns the value for key.
func (f *Fields) Get(key string) (Value, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Str returns the scalar string for key, or "" when absent or a list.
func (f *Fields) Str(key string) string {
	v, ok := f.values[key]
	if !ok || v.IsList {
		return ""
	}
	return v.Str
}

// StrList returns the list for key, or nil when absent or scalar.
func (f *Fields) StrList(key string) []string {
	v, ok := f.values[key]
	if !ok || !v.IsList {
		return nil
	}
	return v.List
}

// Int returns the scalar for key parsed as an integer, or def when absent
// or unparseable.
func (f *Fields) Int(key string, def int) int {
	n, err := strconv.Atoi(f.Str(key))
	if err != nil {
		return def
	}
	return n
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of fields.
func (f *Fields) Len() int { return len(f.keys) }

// Parse extracts the metadata block from a document. It returns the fields,
// the body (everything after the closing marker line), and ok=false when the
// document does not open with a marker line or the closing marker is missing.
// A false result means "not a managed document", never an error.
func Parse(content string) (*Fields, string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != Marker {
		return nil, "", false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == Marker {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, "", false
	}

	fields := NewFields()
	for _, line := range lines[1:end] {
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		fields.Set(key, value)
	}

	body := strings.Join(lines[end+1:], "\n")
	return fields, body, true
}

// parseLine splits one interior line on the first colon. Lines without a
// colon are ignored.
func parseLine(line string) (string, Value, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", Value{}, false
	}
	key := strings.TrimSpace(line[:idx])
	raw := strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", Value{}, false
	}

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		var items []string
		if inner != "" {
			for _, part := range strings.Split(inner, ",") {
				item, _ := unquote(strings.TrimSpace(part))
				items = append(items, item)
			}
		}
		return key, Value{List: items, IsList: true}, true
	}

	str, quoted := unquote(raw)
	return key, Value{Str: str, Quoted: quoted}, true
}

// unquote strips one layer of matching outer quotes. Unmatched quotes are
// left alone.
func unquote(s string) (string, bool) {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}

// Serialize renders fields as metadata block lines, one per key in insertion
// order, without the surrounding marker lines.
func Serialize(f *Fields) string {
	var b strings.Builder
	for i, key := range f.keys {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(renderValue(f.values[key]))
	}
	return b.String()
}

// Render returns a full document: marker, fields, marker, blank line, body.
func Render(f *Fields, body string) string {
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteString("\n")
	b.WriteString(Serialize(f))
	b.WriteString("\n")
	b.WriteString(Marker)
	b.WriteString("\n\n")
	b.WriteString(body)
	return b.String()
}

func renderValue(v Value) string {
	if v.IsList {
		quoted := make([]string, len(v.List))
		for i, item := range v.List {
			quoted[i] = `"` + item + `"`
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	}
	if v.Quoted {
		return `"` + v.Str + `"`
	}
	return v.Str
}

// Join reassembles a document from Parse results. Unlike Render it inserts
// no separator: the body Parse returns starts at the first byte after the
// closing marker line, so the body comes back byte-identical. The metadata
// block is reserialized in canonical form.
func Join(f *Fields, body string) string {
	return Marker + "\n" + Serialize(f) + "\n" + Marker + "\n" + body
}

// Update applies patch as a shallow key overwrite on the document's metadata
// block and splices the reserialized block back between the original marker
// lines, leaving the body byte-for-byte unchanged. When the document has no
// metadata block the input is returned unchanged with ok=false.
func Update(content string, patch *Fields) (string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != Marker {
		return content, false
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == Marker {
			end = i
			break
		}
	}
	if end == -1 {
		return content, false
	}

	fields := NewFields()
	for _, line := range lines[1:end] {
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		fields.Set(key, value)
	}
	for _, key := range patch.keys {
		fields.Set(key, patch.values[key])
	}

	var out []string
	out = append(out, lines[0])
	out = append(out, strings.Split(Serialize(fields), "\n")...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), true
}
