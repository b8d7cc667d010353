package bsdl

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/participle/v2"
)

// Parser parses BSDL sources.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds the grammar.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("bsdl: build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse reads a BSDL file from r. name is used in error positions.
func (p *Parser) Parse(name string, r io.Reader) (*File, error) {
	f, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("bsdl: %w", err)
	}
	return f, nil
}

// ParseString parses an in-memory BSDL source.
func (p *Parser) ParseString(name, src string) (*File, error) {
	f, err := p.parser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("bsdl: %w", err)
	}
	return f, nil
}

// ParseFile opens and parses a BSDL file.
func (p *Parser) ParseFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bsdl: %w", err)
	}
	defer file.Close()
	return p.Parse(path, file)
}

var (
	sharedOnce   sync.Once
	sharedParser *Parser
	sharedErr    error
)

func shared() (*Parser, error) {
	sharedOnce.Do(func() {
		sharedParser, sharedErr = NewParser()
	})
	return sharedParser, sharedErr
}

// ParseBytes parses src with a parser shared by the package.
func ParseBytes(name string, src []byte) (*File, error) {
	p, err := shared()
	if err != nil {
		return nil, err
	}
	return p.ParseString(name, string(src))
}

// ParseFile parses the file at path with the shared parser.
func ParseFile(path string) (*File, error) {
	p, err := shared()
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}
