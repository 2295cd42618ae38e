package types

import "strings"

// Kind classifies a Type for signature rendering.
type Kind int

const (
	KindOther     Kind = iota // opaque type, rendered by name
	KindPrimitive             // built-in storage kind, see Primitive
	KindEnum                  // enumeration backed by Underlying
	KindGeneric               // constructed generic type, see Args
	KindClass                 // composite type with ordered Fields
)

// String returns the lowercase name used in metadata dumps.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindGeneric:
		return "generic"
	case KindClass:
		return "class"
	default:
		return "other"
	}
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindOther.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primitive":
		return KindPrimitive
	case "enum":
		return KindEnum
	case "generic":
		return KindGeneric
	case "class", "struct":
		return KindClass
	default:
		return KindOther
	}
}

// Primitive identifies a built-in storage kind.
type Primitive int

const (
	PrimitiveNone Primitive = iota
	Byte
	SByte
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Single
	Double
	Decimal
	Object
	Boolean
	Char
	String
	Void
)

var primitiveNames = map[Primitive]string{
	Byte:    "Byte",
	SByte:   "SByte",
	Int16:   "Int16",
	UInt16:  "UInt16",
	Int32:   "Int32",
	UInt32:  "UInt32",
	Int64:   "Int64",
	UInt64:  "UInt64",
	Single:  "Single",
	Double:  "Double",
	Decimal: "Decimal",
	Object:  "Object",
	Boolean: "Boolean",
	Char:    "Char",
	String:  "String",
	Void:    "Void",
}

// String returns the runtime name of the kind (for example "UInt32").
func (p Primitive) String() string {
	if n, ok := primitiveNames[p]; ok {
		return n
	}
	return "None"
}

// Type is a node of the type graph handed to the renderer. Only the
// members relevant to Kind are meaningful.
type Type struct {
	Name       string
	Namespace  string
	Kind       Kind
	Primitive  Primitive // KindPrimitive
	Nullable   bool      // KindPrimitive
	Underlying Primitive // KindEnum
	Args       []*Type   // KindGeneric, in declaration order
	Fields     []Field   // KindClass, in declaration order
}

// FullName returns Namespace.Name, or Name when there is no namespace.
func (t *Type) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Field is one directly-declared member of a composite type.
type Field struct {
	Name string
	Type *Type
}

// Assembly is a loaded set of candidate types.
type Assembly struct {
	Name  string
	Types []*Type
}
