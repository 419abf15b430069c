package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Formatter pretty prints trees in the textual notation. Nodes with more
// than one use are labeled at their first occurrence and referred to by
// label afterwards.
type Formatter struct {
	State bool // print sign state

	labels    map[*Node]int
	printed   map[*Node]bool
	nextLabel int
}

// NewFormatter constructs a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		labels:    make(map[*Node]int),
		printed:   make(map[*Node]bool),
		nextLabel: 1,
	}
}

// FormatBlock pretty prints a block with a statement per line.
func (f *Formatter) FormatBlock(b *Block) string {
	var sb strings.Builder
	for _, stmt := range b.Stmts {
		f.writeNode(&sb, stmt.Root())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatNode pretty prints a tree.
func (f *Formatter) FormatNode(n *Node) string {
	var sb strings.Builder
	f.writeNode(&sb, n)
	return sb.String()
}

// Label returns the label of a node, assigning one when it has none.
func (f *Formatter) Label(n *Node) string {
	id, ok := f.labels[n]
	if !ok {
		id = f.nextLabel
		f.labels[n] = id
		f.nextLabel++
	}
	return "@" + strconv.Itoa(id)
}

func (f *Formatter) writeNode(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	if n.RefCount() > 1 {
		sb.WriteString(f.Label(n))
		if f.printed[n] {
			return
		}
		f.printed[n] = true
	} else if n.op == Iconst {
		sb.WriteString(strconv.FormatInt(n.val, 10))
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.op.String())
	switch {
	case n.op.IsLoad(), n.op.IsStore():
		sb.WriteByte(' ')
		sb.WriteString(n.sym)
	case n.op == Iconst, n.op == Lconst:
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(n.val, 10))
	case n.op.IsLoadConst():
		sb.WriteByte(' ')
		sb.WriteString(n.dec.String())
	}
	f.writeAttrs(sb, n)
	for _, c := range n.Children() {
		sb.WriteByte(' ')
		f.writeNode(sb, c)
	}
	sb.WriteByte(')')
}

func (f *Formatter) writeAttrs(sb *strings.Builder, n *Node) {
	t := n.Type()
	if n.op.IsStore() {
		t = n.op.SourceType()
	}
	if t.IsBCD() || t.IsDFP() && n.prec != t.MaxPrecision() {
		fmt.Fprintf(sb, " p=%d", n.prec)
	}
	if n.srcPrec != 0 {
		fmt.Fprintf(sb, " srcp=%d", n.srcPrec)
	}
	if n.frac != 0 {
		fmt.Fprintf(sb, " frac=%d", n.frac)
	}
	if n.op.IsSetSignOnNode() && n.setSign != IgnoredSignCode {
		fmt.Fprintf(sb, " sign=0x%x", n.setSign)
	}
	if !f.State {
		return
	}
	if code := n.KnownSignCode(); code != IgnoredSignCode {
		fmt.Fprintf(sb, " known=0x%x", code)
	} else if code := n.AssumedSignCode(); code != IgnoredSignCode {
		fmt.Fprintf(sb, " assumed=0x%x", code)
	}
	switch n.CleanState() {
	case CleanKnown:
		sb.WriteString(" clean")
	case CleanAssumed:
		sb.WriteString(" aclean")
	}
	if n.IsNonNegative() {
		sb.WriteString(" nonneg")
	}
	if n.IsNonPositive() {
		sb.WriteString(" nonpos")
	}
	if n.CleanSignInStore() {
		sb.WriteString(" cleanstore")
	}
}
