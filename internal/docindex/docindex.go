// Package docindex looks up summaries in a compiler-generated XML
// documentation file. Members are keyed "T:Namespace.Type" for types and
// "P:Namespace.Type.Property" for properties.
package docindex

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Empty is returned for members without a summary.
const Empty = "(Empty)"

// TypeKey returns the lookup key of a type-level summary.
func TypeKey(fullName string) string {
	return "T:" + fullName
}

// PropertyKey returns the lookup key of a field-level summary.
func PropertyKey(ownerFullName, name string) string {
	return "P:" + ownerFullName + "." + name
}

type member struct {
	plain string
	rich  string
}

// Index is read-only once loaded; Set and Merge are meant for building it.
type Index struct {
	assembly string
	members  map[string]member
}

// New returns an empty index.
func New() *Index {
	return &Index{members: make(map[string]member)}
}

type xmlDoc struct {
	Assembly struct {
		Name string `xml:"name"`
	} `xml:"assembly"`
	Members []xmlMember `xml:"members>member"`
}

type xmlMember struct {
	Name    string      `xml:"name,attr"`
	Summary *xmlSummary `xml:"summary"`
}

type xmlSummary struct {
	Inner string `xml:",innerxml"`
}

// Load reads the XML documentation file at path.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	idx, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return idx, nil
}

// Parse decodes an XML documentation document.
func Parse(r io.Reader) (*Index, error) {
	var doc xmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	idx := New()
	idx.assembly = strings.TrimSpace(doc.Assembly.Name)
	for _, m := range doc.Members {
		if m.Name == "" || m.Summary == nil {
			continue
		}
		plain, rich, err := flatten(m.Summary.Inner)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Name, err)
		}
		idx.members[m.Name] = member{plain: plain, rich: rich}
	}
	return idx, nil
}

// Assembly returns the assembly name declared by the document, if any.
func (i *Index) Assembly() string {
	return i.assembly
}

// Len returns the number of indexed members.
func (i *Index) Len() int {
	return len(i.members)
}

// Set stores summary as both the plain and rich text of key.
func (i *Index) Set(key, summary string) {
	s := strings.TrimSpace(summary)
	i.members[key] = member{plain: s, rich: collapse(s)}
}

// Merge copies entries of other whose keys are not yet present.
func (i *Index) Merge(other *Index) {
	if other == nil {
		return
	}
	for k, m := range other.members {
		if _, ok := i.members[k]; !ok {
			i.members[k] = m
		}
	}
	if i.assembly == "" {
		i.assembly = other.assembly
	}
}

// Summary returns the trimmed inner text of the summary of key.
func (i *Index) Summary(key string) string {
	if m, ok := i.members[key]; ok && m.plain != "" {
		return m.plain
	}
	return Empty
}

// RichSummary returns the summary of key with cross references reduced to
// the short name of what they point at and whitespace collapsed.
func (i *Index) RichSummary(key string) string {
	if m, ok := i.members[key]; ok && m.rich != "" {
		return m.rich
	}
	return Empty
}
