// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/script.go
// Summary: Grammar and evaluator for the config script dialect. Only the
// declarative subset the viewer writes back is understood: imports, function
// definitions whose body is a single return, and constructor calls.

package config

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/framegrace/nalu/vcd"
	"github.com/framegrace/nalu/waveform"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "DocString", Pattern: `"""[\s\S]*?"""`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(?:[^"\\\n]|\\.)*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[()\[\],.:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type script struct {
	Statements []*statement `@@*`
}

type statement struct {
	Import *importStmt `  @@`
	Func   *funcDef    `| @@`
}

type importStmt struct {
	Module string   `"from" @Ident "import"`
	Names  []string `@Ident ( "," @Ident )*`
}

type funcDef struct {
	Pos    lexer.Position
	Name   string   `"def" @Ident`
	Params []string `"(" ( @Ident ( "," @Ident )* )? ")" ":"`
	Return *list    `"return" @@?`
}

type list struct {
	Pos      lexer.Position
	Elements []*element `"[" @@* "]"`
}

type element struct {
	Call  *call `@@`
	Comma bool  `@","?`
}

type call struct {
	Pos  lexer.Position
	Func string `@Ident "("`
	Args []*arg `( @@ ( "," @@ )* )? ")"`
}

type arg struct {
	Pos    lexer.Position
	String *string `  @String`
	Int    *int    `| @Int`
	List   *list   `| @@`
	Radix  *string `| "SignalRadix" "." @Ident`
	Ident  *string `| @Ident`
}

var scriptParser = participle.MustBuild[script](
	participle.Lexer(scriptLexer),
	participle.Elide("DocString", "Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// parseScript parses src; filename only labels error positions.
func parseScript(filename string, src []byte) (*script, error) {
	return scriptParser.ParseBytes(filename, src)
}

func (s *script) function(name string) *funcDef {
	for _, st := range s.Statements {
		if st.Func != nil && st.Func.Name == name {
			return st.Func
		}
	}
	return nil
}

// evaluator resolves signal paths against a header while building nodes.
type evaluator struct {
	header *vcd.Header
}

// run evaluates the named function. A missing function or a bare return
// yields no nodes.
func (e *evaluator) run(s *script, name string) ([]*SignalNode, error) {
	f := s.function(name)
	if f == nil || f.Return == nil {
		return nil, nil
	}
	return e.list(f.Return)
}

func (e *evaluator) list(l *list) ([]*SignalNode, error) {
	nodes := make([]*SignalNode, 0, len(l.Elements))
	for i, el := range l.Elements {
		if !el.Comma && i < len(l.Elements)-1 {
			return nil, participle.Errorf(l.Elements[i+1].Call.Pos, "expected \",\" before %s", l.Elements[i+1].Call.Func)
		}
		n, err := e.call(el.Call)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (e *evaluator) call(c *call) (*SignalNode, error) {
	switch c.Func {
	case "new_spacer":
		if err := arity(c, 0); err != nil {
			return nil, err
		}
		return NewSpacer(), nil
	case "new_group":
		if err := arity(c, 3); err != nil {
			return nil, err
		}
		name, err := c.Args[0].str()
		if err != nil {
			return nil, err
		}
		expanded, err := c.Args[1].boolean()
		if err != nil {
			return nil, err
		}
		children, err := e.children(c.Args[2])
		if err != nil {
			return nil, err
		}
		return NewGroup(name, expanded, children), nil
	case "new_vector":
		if err := arity(c, 4); err != nil {
			return nil, err
		}
		name, err := c.Args[0].str()
		if err != nil {
			return nil, err
		}
		radix, err := c.Args[1].radix()
		if err != nil {
			return nil, err
		}
		expanded, err := c.Args[2].boolean()
		if err != nil {
			return nil, err
		}
		children, err := e.children(c.Args[3])
		if err != nil {
			return nil, err
		}
		return NewVector(name, radix, expanded, children), nil
	case "new_signal":
		if err := arity(c, 4); err != nil {
			return nil, err
		}
		path, err := c.Args[0].str()
		if err != nil {
			return nil, err
		}
		radix, err := c.Args[1].radix()
		if err != nil {
			return nil, err
		}
		expanded, err := c.Args[2].boolean()
		if err != nil {
			return nil, err
		}
		bit, err := c.Args[3].optionalInt()
		if err != nil {
			return nil, err
		}
		v, ok := e.header.Variable(path)
		if !ok {
			return nil, &VariableNotFoundError{Path: path}
		}
		if bit != nil && (*bit < 0 || *bit >= v.Width) {
			return nil, participle.Errorf(c.Args[3].Pos, "bit %d out of range for %s (width %d)", *bit, path, v.Width)
		}
		return NewSignal(path, v, radix, expanded, bit), nil
	}
	return nil, participle.Errorf(c.Pos, "unknown function %q", c.Func)
}

func (e *evaluator) children(a *arg) ([]*SignalNode, error) {
	if a.List == nil {
		return nil, participle.Errorf(a.Pos, "expected a list")
	}
	return e.list(a.List)
}

func arity(c *call, n int) error {
	if len(c.Args) != n {
		return participle.Errorf(c.Pos, "%s takes %d arguments, got %d", c.Func, n, len(c.Args))
	}
	return nil
}

func (a *arg) str() (string, error) {
	if a.String == nil {
		return "", participle.Errorf(a.Pos, "expected a string")
	}
	return *a.String, nil
}

func (a *arg) boolean() (bool, error) {
	if a.Ident != nil {
		switch *a.Ident {
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
	}
	return false, participle.Errorf(a.Pos, "expected True or False")
}

func (a *arg) optionalInt() (*int, error) {
	if a.Int != nil {
		return a.Int, nil
	}
	if a.Ident != nil && *a.Ident == "None" {
		return nil, nil
	}
	return nil, participle.Errorf(a.Pos, "expected an integer or None")
}

func (a *arg) radix() (waveform.Radix, error) {
	if a.Radix == nil {
		return 0, participle.Errorf(a.Pos, "expected SignalRadix")
	}
	r, err := waveform.ParseRadix(*a.Radix)
	if err != nil {
		return 0, participle.Errorf(a.Pos, "unknown radix SignalRadix.%s", *a.Radix)
	}
	return r, nil
}
