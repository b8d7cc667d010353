package bsdl

import "strings"

// File is a parsed BSDL file. A file carries a single entity.
type File struct {
	Entity *Entity `@@`
}

// Entity is the top-level declaration:
//
//	entity NAME is ... end NAME;
type Entity struct {
	Name    string         `KwEntity @Ident KwIs`
	Generic *GenericClause `@@?`
	Port    *PortClause    `@@?`
	Decls   []*EntityDecl  `@@*`
	EndName string         `KwEnd ( KwEntity )? @Ident? Semicolon`
}

// EntityDecl is a use clause or an attribute inside the entity body.
type EntityDecl struct {
	UseClause *UseClause `  @@`
	Attribute *Attribute `| @@`
}

// UseClause returns the first use clause, if any.
func (e *Entity) UseClause() *UseClause {
	for _, decl := range e.Decls {
		if decl.UseClause != nil {
			return decl.UseClause
		}
	}
	return nil
}

// Attributes returns every attribute and constant in declaration order.
func (e *Entity) Attributes() []*Attribute {
	var attrs []*Attribute
	for _, decl := range e.Decls {
		if decl.Attribute != nil {
			attrs = append(attrs, decl.Attribute)
		}
	}
	return attrs
}

// Spec returns the attribute specification with the given name.
func (e *Entity) Spec(name string) *AttributeSpec {
	for _, attr := range e.Attributes() {
		if attr.Spec != nil && strings.EqualFold(attr.Spec.Name, name) {
			return attr.Spec
		}
	}
	return nil
}

// GenericClause lists the generics, typically PHYSICAL_PIN_MAP.
type GenericClause struct {
	Generics []*Generic `KwGeneric LParen ( @@ ( Semicolon @@ )* )? RParen Semicolon`
}

type Generic struct {
	Name    string  `@Ident`
	Type    string  `Colon @( Ident | KwString | KwInteger | KwReal | KwBoolean )`
	Default *String `( Assign @@ )?`
}

// PortClause lists the device ports.
type PortClause struct {
	Ports []*Port `KwPort LParen ( @@ ( Semicolon @@ )* Semicolon? )? RParen Semicolon`
}

type Port struct {
	Name string    `@Ident`
	Mode string    `Colon @( KwIn | KwOut | KwInout | KwBuffer | KwLinkage )`
	Type *PortType `@@`
}

type PortType struct {
	Name  string     `@( KwBit | KwBitVector | KwString )`
	Range *RangeSpec `@@?`
}

// RangeSpec is a vector range such as (0 to 7).
type RangeSpec struct {
	Start     int    `LParen @Integer`
	Direction string `@Ident`
	End       int    `@Integer RParen`
}

type UseClause struct {
	Package string `KwUse @Ident`
	Member  string `Dot @( Ident | KwAll ) Semicolon`
}

type Attribute struct {
	Constant *Constant      `  @@`
	Spec     *AttributeSpec `| @@`
}

// Constant is a constant declaration, used for pin map strings.
type Constant struct {
	Name  string      `KwConstant @Ident`
	Type  string      `Colon @Ident`
	Value *Expression `Assign @@ Semicolon`
}

// AttributeSpec is "attribute NAME of TARGET : CLASS is VALUE;".
type AttributeSpec struct {
	Name  string      `KwAttribute @Ident`
	Of    string      `KwOf @Ident`
	Class string      `Colon @( Ident | KwEntity | KwSignal | KwConstant )`
	Is    *Expression `KwIs @@ Semicolon`
}

// Expression is one or more terms joined with &.
type Expression struct {
	Terms []*Term `@@ ( Concat @@ )*`
}

type Term struct {
	String  *String  `  @@`
	Integer *int     `| @Integer`
	Real    *float64 `| @Real`
	Ident   *string  `| @Ident`
	Tuple   *Tuple   `| @@`
	Boolean *bool    `| ( @KwTrue | KwFalse )`
}

// Tuple is a parenthesised list such as (1.0e6, BOTH).
type Tuple struct {
	Values []*Expression `LParen @@ ( Comma @@ )* RParen`
}

type String struct {
	Value string `@String`
}

// Text returns the literal without its quotes.
func (s *String) Text() string {
	if len(s.Value) >= 2 && s.Value[0] == '"' && s.Value[len(s.Value)-1] == '"' {
		return s.Value[1 : len(s.Value)-1]
	}
	return s.Value
}

// Text concatenates every string term of the expression.
func (e *Expression) Text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	for _, term := range e.Terms {
		if term.String != nil {
			b.WriteString(term.String.Text())
		}
	}
	return b.String()
}

// Int returns the value of a single integer expression.
func (e *Expression) Int() (int, bool) {
	if e != nil && len(e.Terms) == 1 && e.Terms[0].Integer != nil {
		return *e.Terms[0].Integer, true
	}
	return 0, false
}
