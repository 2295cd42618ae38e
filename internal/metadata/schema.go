// Package metadata loads the type graph that packet pages are generated
// from: either a YAML/JSON dump of an assembly's types or a tree of Go
// packages.
package metadata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/packetdoc/internal/docindex"
	"github.com/yourorg/packetdoc/pkg/types"
)

// Dump is the on-disk form of an assembly's types.
type Dump struct {
	Assembly string     `yaml:"assembly" json:"assembly"`
	Types    []DumpType `yaml:"types" json:"types"`
}

type DumpType struct {
	Name       string      `yaml:"name" json:"name"`
	Namespace  string      `yaml:"namespace" json:"namespace"`
	Kind       string      `yaml:"kind" json:"kind"`
	Underlying string      `yaml:"underlying,omitempty" json:"underlying,omitempty"`
	Fields     []DumpField `yaml:"fields,omitempty" json:"fields,omitempty"`
}

type DumpField struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Load reads the metadata at path. A directory is loaded as Go packages
// and also yields the doc comments found there; a file is decoded as a
// Dump and yields a nil index.
func Load(path string) (*types.Assembly, *docindex.Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return LoadGoPackages(path, "./...")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	asm, err := ParseDump(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return asm, nil, nil
}

// ParseDump decodes a YAML or JSON dump and links every field type.
func ParseDump(data []byte) (*types.Assembly, error) {
	var d Dump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.Resolve()
}

// Resolve builds the type graph described by d. Declared types are
// shared, so a type referenced from several fields is one node.
func (d *Dump) Resolve() (*types.Assembly, error) {
	r := &resolver{
		byFull:   make(map[string]*types.Type),
		bySimple: make(map[string][]*types.Type),
		opaque:   make(map[string]*types.Type),
		structs:  make(map[*types.Type]bool),
	}
	asm := &types.Assembly{Name: d.Assembly, Types: make([]*types.Type, 0, len(d.Types))}

	for _, dt := range d.Types {
		t, err := declare(dt)
		if err != nil {
			return nil, err
		}
		full := t.FullName()
		if _, dup := r.byFull[full]; dup {
			return nil, fmt.Errorf("type %s declared twice", full)
		}
		r.byFull[full] = t
		r.bySimple[t.Name] = append(r.bySimple[t.Name], t)
		if strings.EqualFold(strings.TrimSpace(dt.Kind), "struct") {
			r.structs[t] = true
		}
		asm.Types = append(asm.Types, t)
	}

	for i, dt := range d.Types {
		t := asm.Types[i]
		if len(dt.Fields) > 0 && t.Kind != types.KindClass {
			return nil, fmt.Errorf("type %s: only class types declare fields", t.FullName())
		}
		for _, df := range dt.Fields {
			if strings.TrimSpace(df.Name) == "" {
				return nil, fmt.Errorf("type %s: field without name", t.FullName())
			}
			ft, err := r.ref(df.Type)
			if err != nil {
				return nil, fmt.Errorf("type %s field %s: %w", t.FullName(), df.Name, err)
			}
			t.Fields = append(t.Fields, types.Field{Name: df.Name, Type: ft})
		}
	}
	return asm, nil
}

func declare(dt DumpType) (*types.Type, error) {
	name := strings.TrimSpace(dt.Name)
	if name == "" {
		return nil, fmt.Errorf("type without name in namespace %q", dt.Namespace)
	}
	t := &types.Type{Name: name, Namespace: strings.TrimSpace(dt.Namespace)}

	switch strings.ToLower(strings.TrimSpace(dt.Kind)) {
	case "class", "struct", "":
		t.Kind = types.KindClass
	case "enum":
		t.Kind = types.KindEnum
		t.Underlying = types.Int32
		if dt.Underlying != "" {
			p, nullable, ok := primitiveByName(dt.Underlying)
			if !ok || nullable {
				return nil, fmt.Errorf("enum %s: unknown underlying type %q", t.FullName(), dt.Underlying)
			}
			t.Underlying = p
		}
	case "primitive":
		t.Kind = types.KindPrimitive
		if p, _, ok := primitiveByName(t.FullName()); ok {
			t.Primitive = p
		}
	case "other", "interface", "delegate":
		t.Kind = types.KindOther
	default:
		return nil, fmt.Errorf("type %s: unknown kind %q", t.FullName(), dt.Kind)
	}
	return t, nil
}
