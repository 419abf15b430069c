// Package syntax parses the textual tree notation of decimal IR blocks.
//
// A block is a sequence of forms, one statement each:
//
//	; comment
//	(pdstore y p=5 (pdshr p=5 @x(pdload x p=8) 3 0))
//	(zdstore z p=8 (pd2zd p=8 @x))
//
// A form is (op attr=value ... child ...), a bare integer is an iconst,
// @name(form) labels a node, and @name refers to a labeled node again.
package syntax // import "github.com/andrewarchi/decsimp/syntax"

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andrewarchi/decsimp/ir"
)

// Parse parses a block.
func Parse(filename string, r io.Reader) (*ir.Block, error) {
	p := &parser{lex: newLexer(filename, r), labels: make(map[string]*ir.Node)}
	if err := p.next(); err != nil {
		return nil, err
	}
	b := &ir.Block{}
	for p.tok.tok != EOF {
		n, err := p.form()
		if err != nil {
			return nil, err
		}
		b.Append(n)
	}
	return b, nil
}

// ParseString parses a block from a string.
func ParseString(src string) (*ir.Block, error) {
	return Parse("", strings.NewReader(src))
}

type parser struct {
	lex    *lexer
	tok    lexeme
	labels map[string]*ir.Node
}

func (p *parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(pos Pos, format string, args ...interface{}) error {
	return &Error{pos, fmt.Sprintf(format, args...)}
}

func (p *parser) expect(tok token) error {
	if p.tok.tok != tok {
		return p.errorf(p.tok.pos, "expected %v, got %v %q", tok, p.tok.tok, p.tok.text)
	}
	return p.next()
}

func (p *parser) form() (*ir.Node, error) {
	switch p.tok.tok {
	case Int:
		v, err := p.int(p.tok)
		if err != nil {
			return nil, err
		}
		return ir.NewIconst(int(v)), p.next()
	case Label:
		label := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.tok != LParen || p.tok.pos.Line != label.pos.Line ||
			p.tok.pos.Col != label.pos.Col+len(label.text)+1 {
			n, ok := p.labels[label.text]
			if !ok {
				return nil, p.errorf(label.pos, "undefined label @%s", label.text)
			}
			return n, nil
		}
		if _, ok := p.labels[label.text]; ok {
			return nil, p.errorf(label.pos, "label @%s redefined", label.text)
		}
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		p.labels[label.text] = n
		return n, nil
	case LParen:
		return p.node()
	}
	return nil, p.errorf(p.tok.pos, "unexpected %v %q", p.tok.tok, p.tok.text)
}

type attr struct {
	name  string
	value lexeme
	flag  bool
}

func (p *parser) node() (*ir.Node, error) {
	if err := p.expect(LParen); err != nil {
		return nil, err
	}
	opTok := p.tok
	if opTok.tok != Ident {
		return nil, p.errorf(opTok.pos, "expected op, got %v %q", opTok.tok, opTok.text)
	}
	op, ok := ir.LookupOp(opTok.text)
	if !ok {
		return nil, p.errorf(opTok.pos, "unknown op %q", opTok.text)
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	var (
		sym      string
		value    *lexeme
		attrs    []attr
		children []*ir.Node
	)
	for p.tok.tok != RParen {
		switch tok := p.tok; tok.tok {
		case EOF:
			return nil, p.errorf(tok.pos, "unterminated %v", op)
		case Ident:
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.tok.tok == Assign {
				if err := p.next(); err != nil {
					return nil, err
				}
				attrs = append(attrs, attr{name: tok.text, value: p.tok})
				if err := p.next(); err != nil {
					return nil, err
				}
			} else if isFlag(tok.text) {
				attrs = append(attrs, attr{name: tok.text, value: tok, flag: true})
			} else if (op.IsLoad() || op.IsStore()) && sym == "" {
				sym = tok.text
			} else {
				return nil, p.errorf(tok.pos, "unexpected identifier %q", tok.text)
			}
		case Int, Decimal:
			if op.IsLoadConst() && value == nil && len(children) == 0 {
				value = &tok
				if err := p.next(); err != nil {
					return nil, err
				}
				continue
			}
			fallthrough
		default:
			c, err := p.form()
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
	}
	closePos := p.tok.pos
	if err := p.next(); err != nil {
		return nil, err
	}

	if len(children) != op.Arity() {
		return nil, p.errorf(opTok.pos, "%v takes %d children, got %d", op, op.Arity(), len(children))
	}
	var n *ir.Node
	switch {
	case op.IsLoad():
		if sym == "" {
			return nil, p.errorf(opTok.pos, "%v without symbol", op)
		}
		n = ir.NewLoad(op, sym, 0)
	case op.IsStore():
		if sym == "" {
			return nil, p.errorf(opTok.pos, "%v without symbol", op)
		}
		n = ir.NewStore(op, sym, 0, children[0])
	case op.IsLoadConst():
		if value == nil {
			return nil, p.errorf(closePos, "%v without value", op)
		}
		var err error
		if n, err = p.constant(op, *value); err != nil {
			return nil, err
		}
	default:
		n = ir.NewNode(op, children...)
	}
	for _, a := range attrs {
		if err := p.applyAttr(n, a); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *parser) constant(op ir.Op, tok lexeme) (*ir.Node, error) {
	switch op {
	case ir.Iconst, ir.Lconst:
		v, err := p.int(tok)
		if err != nil {
			return nil, err
		}
		if op == ir.Iconst {
			return ir.NewIconst(int(v)), nil
		}
		return ir.NewLconst(v), nil
	}
	d, err := decimal.NewFromString(tok.text)
	if err != nil {
		return nil, p.errorf(tok.pos, "invalid decimal %q", tok.text)
	}
	if op == ir.Pdconst && !d.Equal(d.Truncate(0)) {
		return nil, p.errorf(tok.pos, "packed constant %q is not an integer", tok.text)
	}
	return ir.NewDecimalConst(op, d), nil
}

func (p *parser) int(tok lexeme) (int64, error) {
	if tok.tok != Int {
		return 0, p.errorf(tok.pos, "expected integer, got %q", tok.text)
	}
	v, err := strconv.ParseInt(tok.text, 0, 64)
	if err != nil {
		return 0, p.errorf(tok.pos, "invalid integer %q", tok.text)
	}
	return v, nil
}

func isFlag(name string) bool {
	switch name {
	case "clean", "aclean", "nonneg", "nonpos", "cleanstore":
		return true
	}
	return false
}

func (p *parser) applyAttr(n *ir.Node, a attr) error {
	pos := a.value.pos
	if a.flag {
		switch a.name {
		case "clean":
			n.SetCleanState(ir.CleanKnown)
		case "aclean":
			n.SetCleanState(ir.CleanAssumed)
		case "nonneg":
			n.SetNonNegative()
		case "nonpos":
			n.SetNonPositive()
		case "cleanstore":
			if !n.Op().IsStore() {
				return p.errorf(pos, "cleanstore on %v", n.Op())
			}
			n.SetCleanSignInStore()
		}
		return nil
	}
	v, err := p.int(a.value)
	if err != nil {
		return err
	}
	switch a.name {
	case "p":
		if v <= 0 {
			return p.errorf(pos, "precision %d is not positive", v)
		}
		n.SetPrecision(int(v))
	case "srcp":
		n.SetSourcePrecision(int(v))
	case "frac":
		n.SetFraction(int(v))
	case "sign":
		if !n.Op().IsSetSignOnNode() {
			return p.errorf(pos, "%v does not hold a sign", n.Op())
		}
		n.SetNodeSign(int(v))
	case "known", "assumed":
		if !n.Type().IsEmbeddedSign() {
			return p.errorf(pos, "%v has no embedded sign", n.Op())
		}
		if !ir.IsSupportedRawSign(int(v)) {
			return p.errorf(pos, "untracked sign code 0x%x", v)
		}
		n.SetKnownOrAssumedSignCode(int(v), a.name == "known")
	default:
		return p.errorf(pos, "unknown attribute %q", a.name)
	}
	return nil
}
