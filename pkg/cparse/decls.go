package cparse

// Type describes a C type reference as it appears in a declaration. Only the
// subset used by C-ABI headers is modelled: a (possibly const) named base
// type with any number of pointer levels and an optional array length.
type Type struct {
	Base     string
	Pointers int
	Const    bool
	ArrayLen string
}

// IsVoid reports whether the type is a plain void (not a void pointer).
func (t Type) IsVoid() bool {
	return t.Base == "void" && t.Pointers == 0
}

// Define is an object-like macro with a literal value, e.g.
// #define UPLINK_ERROR_INTERNAL 0x02
type Define struct {
	Name  string
	Value string
	Line  int
}

// Typedef is a primitive alias, e.g. typedef uint8_t uplink_const_char;
type Typedef struct {
	Name   string
	Target Type
	Line   int
}

// Field is a single struct member. Function-pointer members keep their
// parameter list in Params and have FuncPtr set.
type Field struct {
	Name    string
	Type    Type
	FuncPtr bool
	Params  []Param
}

// Struct is a typedef'd struct declaration. Opaque forward declarations
// (typedef struct Tag Name;) have a nil field list.
type Struct struct {
	Name   string
	Tag    string
	Fields []Field
	Opaque bool
	Line   int
}

// EnumMember is a single named enum constant. Value is empty when the
// member relies on auto-increment.
type EnumMember struct {
	Name  string
	Value string
}

// Enum is a typedef'd enum declaration.
type Enum struct {
	Name    string
	Members []EnumMember
	Line    int
}

// Param is a function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a top-level function prototype.
type Function struct {
	Name     string
	Return   Type
	Params   []Param
	Variadic bool
	Line     int
}

// Header is the parsed content of a C API header.
type Header struct {
	Defines   []Define
	Typedefs  []Typedef
	Structs   []Struct
	Enums     []Enum
	Functions []Function
}

// TypeNames returns the names of all declared types (typedefs, structs and
// enums) in declaration order.
func (h *Header) TypeNames() []string {
	names := make([]string, 0, len(h.Typedefs)+len(h.Structs)+len(h.Enums))
	for _, t := range h.Typedefs {
		names = append(names, t.Name)
	}
	for _, s := range h.Structs {
		names = append(names, s.Name)
	}
	for _, e := range h.Enums {
		names = append(names, e.Name)
	}
	return names
}
