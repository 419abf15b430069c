package syntax

import (
	"bufio"
	"io"
	"strings"

	"github.com/go-faster/errors"
)

type lexer struct {
	br       *bufio.Reader
	filename string
	line     int
	col      int
	prevCol  int
}

type lexeme struct {
	tok  token
	text string
	pos  Pos
}

func newLexer(filename string, r io.Reader) *lexer {
	return &lexer{br: bufio.NewReader(r), filename: filename, line: 1, col: 1}
}

func (l *lexer) pos() Pos { return Pos{l.filename, l.line, l.col} }

func (l *lexer) read() (byte, error) {
	b, err := l.br.ReadByte()
	if err != nil {
		return 0, err
	}
	l.prevCol = l.col
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b, nil
}

func (l *lexer) unread() {
	if err := l.br.UnreadByte(); err != nil {
		panic(err)
	}
	if l.col == 1 {
		l.line--
	}
	l.col = l.prevCol
}

// Next reads the next token, skipping whitespace and comments.
func (l *lexer) Next() (lexeme, error) {
	for {
		pos := l.pos()
		b, err := l.read()
		if err == io.EOF {
			return lexeme{EOF, "", pos}, nil
		}
		if err != nil {
			return lexeme{}, errors.Wrap(err, "read")
		}
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			continue
		case b == ';':
			if err := l.skipLine(); err != nil {
				return lexeme{}, err
			}
			continue
		case b == '(':
			return lexeme{LParen, "(", pos}, nil
		case b == ')':
			return lexeme{RParen, ")", pos}, nil
		case b == '=':
			return lexeme{Assign, "=", pos}, nil
		case b == '@':
			name, err := l.word()
			if err != nil {
				return lexeme{}, err
			}
			if name == "" {
				return lexeme{}, &Error{pos, "empty label"}
			}
			return lexeme{Label, name, pos}, nil
		case isDigit(b) || b == '-' || b == '+':
			l.unread()
			text, err := l.word()
			if err != nil {
				return lexeme{}, err
			}
			tok := Int
			if strings.ContainsAny(text, ".eE") && !strings.HasPrefix(strings.TrimLeft(text, "+-"), "0x") {
				tok = Decimal
			}
			return lexeme{tok, text, pos}, nil
		case isLetter(b):
			l.unread()
			text, err := l.word()
			if err != nil {
				return lexeme{}, err
			}
			return lexeme{Ident, text, pos}, nil
		default:
			return lexeme{}, &Error{pos, "unexpected character " + string(rune(b))}
		}
	}
}

func (l *lexer) skipLine() error {
	for {
		b, err := l.read()
		if err == io.EOF || b == '\n' {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read")
		}
	}
}

// word reads a run of letters, digits, signs, and dots.
func (l *lexer) word() (string, error) {
	var sb strings.Builder
	for {
		b, err := l.read()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", errors.Wrap(err, "read")
		}
		if !isLetter(b) && !isDigit(b) && b != '.' && b != '-' && b != '+' {
			l.unread()
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_'
}
