package metadata

import (
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/yourorg/packetdoc/internal/docindex"
	"github.com/yourorg/packetdoc/pkg/types"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// LoadGoPackages loads the packages matching patterns below dir. Every
// exported, non-generic named type becomes a candidate; the namespace of
// a type is its package path with "/" replaced by ".". Type and field
// doc comments are returned as an index keyed like the XML file.
func LoadGoPackages(dir string, patterns ...string) (*types.Assembly, *docindex.Index, error) {
	cfg := &packages.Config{Mode: LoadMode, Dir: dir}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, nil, fmt.Errorf("load packages: %w", err)
	}
	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
	}
	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("package errors: %s", strings.Join(errs, "; "))
	}
	if len(pkgs) == 0 {
		return nil, nil, fmt.Errorf("no packages found in %s", dir)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	l := &goLoader{
		cache: make(map[gotypes.Type]*types.Type),
		enums: make(map[*gotypes.TypeName]bool),
		local: make(map[string]bool, len(pkgs)),
	}
	for _, pkg := range pkgs {
		l.local[pkg.PkgPath] = true
		l.findEnums(pkg.Types.Scope())
	}

	asm := &types.Assembly{Name: pkgs[0].PkgPath}
	if pkgs[0].Module != nil {
		asm.Name = pkgs[0].Module.Path
	}
	docs := docindex.New()
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*gotypes.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			if named, ok := tn.Type().(*gotypes.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}
			asm.Types = append(asm.Types, l.convert(tn.Type()))
		}
		for _, file := range pkg.Syntax {
			collectDocs(docs, namespaceOf(pkg.PkgPath), file)
		}
	}
	return asm, docs, nil
}

type goLoader struct {
	cache map[gotypes.Type]*types.Type
	enums map[*gotypes.TypeName]bool
	local map[string]bool
}

// findEnums marks named basic types that have constants declared in
// their package.
func (l *goLoader) findEnums(scope *gotypes.Scope) {
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*gotypes.Const)
		if !ok {
			continue
		}
		if named, ok := c.Type().(*gotypes.Named); ok {
			if _, basic := named.Underlying().(*gotypes.Basic); basic {
				l.enums[named.Obj()] = true
			}
		}
	}
}

func (l *goLoader) convert(t gotypes.Type) *types.Type {
	t = gotypes.Unalias(t)
	if c, ok := l.cache[t]; ok {
		return c
	}

	switch tt := t.(type) {
	case *gotypes.Named:
		return l.named(tt)
	case *gotypes.Basic:
		if p, ok := basicKind(tt); ok {
			return primitive(p, false)
		}
		return &types.Type{Name: tt.Name(), Kind: types.KindOther}
	case *gotypes.Pointer:
		elem := l.convert(tt.Elem())
		if elem.Kind == types.KindPrimitive && !elem.Nullable && elem.Primitive != types.String && elem.Primitive != types.Object {
			return primitive(elem.Primitive, true)
		}
		return elem
	case *gotypes.Slice:
		return container("List", l.convert(tt.Elem()))
	case *gotypes.Array:
		return container("Array", l.convert(tt.Elem()))
	case *gotypes.Map:
		return container("Dictionary", l.convert(tt.Key()), l.convert(tt.Elem()))
	case *gotypes.Interface:
		if tt.Empty() {
			return primitive(types.Object, false)
		}
	case *gotypes.Struct:
		out := &types.Type{Name: "struct", Kind: types.KindClass}
		l.fields(tt, out)
		return out
	}
	return &types.Type{Name: t.String(), Kind: types.KindOther}
}

func (l *goLoader) named(n *gotypes.Named) *types.Type {
	obj := n.Obj()
	out := &types.Type{Name: obj.Name()}
	if obj.Pkg() != nil {
		out.Namespace = namespaceOf(obj.Pkg().Path())
	}
	// registered before recursing so self references share the node
	l.cache[n] = out

	if args := n.TypeArgs(); args.Len() > 0 {
		out.Kind = types.KindGeneric
		for i := 0; i < args.Len(); i++ {
			out.Args = append(out.Args, l.convert(args.At(i)))
		}
		return out
	}
	if obj.Pkg() == nil || !l.local[obj.Pkg().Path()] {
		out.Kind = types.KindOther
		return out
	}

	switch u := n.Underlying().(type) {
	case *gotypes.Struct:
		out.Kind = types.KindClass
		l.fields(u, out)
	case *gotypes.Basic:
		p, ok := basicKind(u)
		switch {
		case !ok:
			out.Kind = types.KindOther
		case l.enums[obj]:
			out.Kind = types.KindEnum
			out.Underlying = p
		default:
			out.Kind = types.KindPrimitive
			out.Primitive = p
		}
	default:
		out.Kind = types.KindOther
	}
	return out
}

func (l *goLoader) fields(st *gotypes.Struct, out *types.Type) {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		out.Fields = append(out.Fields, types.Field{Name: f.Name(), Type: l.convert(f.Type())})
	}
}

func container(name string, args ...*types.Type) *types.Type {
	return &types.Type{Name: name, Kind: types.KindGeneric, Args: args}
}

func basicKind(b *gotypes.Basic) (types.Primitive, bool) {
	switch b.Kind() {
	case gotypes.Bool, gotypes.UntypedBool:
		return types.Boolean, true
	case gotypes.Int8:
		return types.SByte, true
	case gotypes.Uint8:
		return types.Byte, true
	case gotypes.Int16:
		return types.Int16, true
	case gotypes.Uint16:
		return types.UInt16, true
	case gotypes.Int32:
		return types.Int32, true
	case gotypes.Uint32:
		return types.UInt32, true
	case gotypes.Int, gotypes.Int64:
		return types.Int64, true
	case gotypes.Uint, gotypes.Uint64, gotypes.Uintptr:
		return types.UInt64, true
	case gotypes.Float32:
		return types.Single, true
	case gotypes.Float64:
		return types.Double, true
	case gotypes.String, gotypes.UntypedString:
		return types.String, true
	}
	return types.PrimitiveNone, false
}

func namespaceOf(pkgPath string) string {
	return strings.ReplaceAll(pkgPath, "/", ".")
}

// collectDocs indexes type and field doc comments of file.
func collectDocs(idx *docindex.Index, ns string, file *ast.File) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			full := ns + "." + ts.Name.Name
			if doc != nil {
				idx.Set(docindex.TypeKey(full), doc.Text())
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			for _, fld := range st.Fields.List {
				text := ""
				if fld.Doc != nil {
					text = fld.Doc.Text()
				} else if fld.Comment != nil {
					text = fld.Comment.Text()
				}
				if text == "" {
					continue
				}
				for _, name := range fld.Names {
					idx.Set(docindex.PropertyKey(full, name.Name), text)
				}
			}
		}
	}
}
