package syntax

type token uint

const (
	EOF token = iota + 1
	Ident
	Label // @name

	// Literals
	Int
	Decimal

	LParen
	RParen
	Assign
)

func (tok token) String() string {
	switch tok {
	case EOF:
		return "eof"
	case Ident:
		return "ident"
	case Label:
		return "label"
	case Int:
		return "int"
	case Decimal:
		return "decimal"
	case LParen:
		return "("
	case RParen:
		return ")"
	case Assign:
		return "="
	default:
		return "badtoken"
	}
}
