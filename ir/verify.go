package ir

import (
	"github.com/go-faster/errors"

	"github.com/andrewarchi/decsimp/internal/digraph"
)

// Verify checks the structural consistency of a block: use lists agree
// with operand lists, arities match the opcode table, set sign values
// are valid, decimal precisions are positive, and no node reaches
// itself.
func Verify(b *Block) error {
	ids := make(map[*Node]int)
	var nodes []*Node
	var collect func(n *Node)
	collect = func(n *Node) {
		if _, ok := ids[n]; ok {
			return
		}
		ids[n] = len(nodes)
		nodes = append(nodes, n)
		for _, c := range n.Children() {
			if c != nil {
				collect(c)
			}
		}
	}
	for i, stmt := range b.Stmts {
		root := stmt.Root()
		if root == nil {
			return errors.Errorf("statement %d: nil root", i)
		}
		if !hasUse(root, stmt, 0) {
			return errors.Errorf("statement %d: root does not record its use", i)
		}
		collect(root)
	}

	g := digraph.New(len(nodes))
	for id, n := range nodes {
		if err := verifyNode(n); err != nil {
			return errors.Wrapf(err, "node %d %v", id, n.op)
		}
		for _, c := range n.Children() {
			g.AddEdge(id, ids[c])
		}
	}
	if cycles := g.Cycles(); len(cycles) != 0 {
		return errors.Errorf("cycle through %v", nodes[cycles[0][0]].op)
	}
	return nil
}

func verifyNode(n *Node) error {
	if n.released {
		return errors.New("reachable node is released")
	}
	if len(n.operands) != n.op.Arity() {
		return errors.Errorf("has %d children, want %d", len(n.operands), n.op.Arity())
	}
	for i, operand := range n.operands {
		if operand.def == nil {
			return errors.Errorf("child %d is nil", i)
		}
		if operand.user != User(n) || operand.operand != i {
			return errors.Errorf("child %d has a stale operand", i)
		}
		if !hasUse(operand.def, n, i) {
			return errors.Errorf("child %d does not record its use", i)
		}
	}
	for _, use := range n.uses {
		if use.def != n {
			return errors.New("use refers to another node")
		}
		if _, ok := use.user.(*Node); ok && use.user.Operand(use.operand) != use {
			return errors.New("use is not an operand of its user")
		}
	}
	t := n.Type()
	if n.op.IsStore() {
		t = n.op.SourceType()
	}
	if (t.IsBCD() || t.IsDFP()) && n.prec <= 0 {
		return errors.Errorf("precision %d is not positive", n.prec)
	}
	if t.IsBCD() && n.prec > t.MaxPrecision() {
		return errors.Errorf("precision %d exceeds %d", n.prec, t.MaxPrecision())
	}
	if code, ok := n.SetSign(); ok && code != IgnoredSignCode {
		if !IsValidSignCode(n.Type(), code) {
			return errors.Errorf("invalid set sign 0x%x", code)
		}
	} else if i := n.op.SetSignValueIndex(); i >= 0 && n.Child(i).Type() != Int32 {
		return errors.Errorf("set sign value is %v", n.Child(i).Type())
	}
	// Operands of an op with a source type have that type.
	if src := n.op.SourceType(); src != NoType {
		for i, c := range n.Children() {
			if i != n.op.SetSignValueIndex() && c.Type() != src {
				return errors.Errorf("child %d is %v, want %v", i, c.Type(), src)
			}
		}
	}
	return nil
}

func hasUse(def *Node, user User, operand int) bool {
	for _, use := range def.uses {
		if use.user == user && use.operand == operand {
			return true
		}
	}
	return false
}
