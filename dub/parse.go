// Package dub parses the command language of the doppler shell.
//
// A line holds one or more commands separated by semicolons. A command is an
// identifier followed by arguments, which are identifiers, numbers or double
// quoted strings. A '#' starts a comment that runs to the end of the line.
package dub

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// Number returns the value of a numeric node.
func Number(n Node) (float64, bool) {
	switch n := n.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}

// Format renders a node the way it would be written in a command.
func Format(n Node) string {
	switch n := n.(type) {
	case Identifier:
		return string(n)
	case Int:
		return strconv.Itoa(int(n))
	case Float:
		return strconv.FormatFloat(float64(n), 'g', -1, 64)
	case String:
		return strconv.Quote(string(n))
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", n)
}

// ParseLine parses the commands on a line. Empty commands are skipped.
func ParseLine(input string) ([]Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := parser{tokens: tokens}
	var cmds []Command
	for p.peek().typ != typeEOF {
		if p.peek().typ == typeSemicolon {
			p.next()
			continue
		}
		cmd, err := p.parse()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) peek() token {
	t := p.next()
	p.pos--
	return t
}

func (p *parser) parse() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for {
		token := p.next()
		var arg Node
		switch token.typ {
		case typeEOF:
			p.pos--
			return cmd, nil
		case typeSemicolon:
			return cmd, nil
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			s, err := strconv.Unquote(token.text)
			if err != nil {
				return cmd, fmt.Errorf("invalid string %s at position %d", token.text, token.pos)
			}
			arg = String(s)
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(token.text)
			if err != nil {
				return cmd, err
			}
			arg = Int(n)
		default:
			return cmd, unexpected(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
}

func unexpected(t token) error {
	return fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
}
