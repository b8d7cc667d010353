package bsdl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the VHDL subset used by BSDL. Keywords are case-insensitive
// and must precede Ident so they win at the same position.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},

	{Name: "KwEntity", Pattern: `(?i)\bENTITY\b`},
	{Name: "KwIs", Pattern: `(?i)\bIS\b`},
	{Name: "KwEnd", Pattern: `(?i)\bEND\b`},
	{Name: "KwGeneric", Pattern: `(?i)\bGENERIC\b`},
	{Name: "KwPort", Pattern: `(?i)\bPORT\b`},
	{Name: "KwUse", Pattern: `(?i)\bUSE\b`},
	{Name: "KwAll", Pattern: `(?i)\bALL\b`},
	{Name: "KwAttribute", Pattern: `(?i)\bATTRIBUTE\b`},
	{Name: "KwOf", Pattern: `(?i)\bOF\b`},
	{Name: "KwConstant", Pattern: `(?i)\bCONSTANT\b`},
	{Name: "KwSignal", Pattern: `(?i)\bSIGNAL\b`},

	// Port modes.
	{Name: "KwIn", Pattern: `(?i)\bIN\b`},
	{Name: "KwOut", Pattern: `(?i)\bOUT\b`},
	{Name: "KwInout", Pattern: `(?i)\bINOUT\b`},
	{Name: "KwBuffer", Pattern: `(?i)\bBUFFER\b`},
	{Name: "KwLinkage", Pattern: `(?i)\bLINKAGE\b`},

	// Types.
	{Name: "KwBit", Pattern: `(?i)\bBIT\b`},
	{Name: "KwBitVector", Pattern: `(?i)\bBIT_VECTOR\b`},
	{Name: "KwString", Pattern: `(?i)\bSTRING\b`},
	{Name: "KwInteger", Pattern: `(?i)\bINTEGER\b`},
	{Name: "KwReal", Pattern: `(?i)\bREAL\b`},
	{Name: "KwBoolean", Pattern: `(?i)\bBOOLEAN\b`},
	{Name: "KwTrue", Pattern: `(?i)\bTRUE\b`},
	{Name: "KwFalse", Pattern: `(?i)\bFALSE\b`},

	{Name: "Assign", Pattern: `:=`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Concat", Pattern: `&`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Real", Pattern: `[-+]?[0-9]+\.[0-9]+([eE][-+]?[0-9]+)?`},
	{Name: "Integer", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_]*`},
	{Name: "Asterisk", Pattern: `\*`},
})
