package ir

// Block is an ordered sequence of statements.
type Block struct {
	Stmts []*Statement
}

// Statement is an evaluated top-level tree. It is the user of its root.
type Statement struct {
	userBase
}

// NewStatement constructs a statement evaluating root.
func NewStatement(root *Node) *Statement {
	stmt := &Statement{}
	stmt.initOperands(stmt, root)
	return stmt
}

// Root returns the root node.
func (stmt *Statement) Root() *Node { return stmt.operands[0].def }

// SetRoot replaces the root node, releasing the previous root.
func (stmt *Statement) SetRoot(root *Node) { stmt.SetOperand(0, root) }

// NewBlock constructs a block with a statement per root.
func NewBlock(roots ...*Node) *Block {
	b := &Block{}
	for _, root := range roots {
		b.Append(root)
	}
	return b
}

// Append adds a statement evaluating root at the end of the block.
func (b *Block) Append(root *Node) *Statement {
	stmt := NewStatement(root)
	b.Stmts = append(b.Stmts, stmt)
	return stmt
}

// InsertBefore inserts a statement evaluating root before the ith
// statement.
func (b *Block) InsertBefore(i int, root *Node) *Statement {
	stmt := NewStatement(root)
	b.Stmts = append(b.Stmts, nil)
	copy(b.Stmts[i+1:], b.Stmts[i:])
	b.Stmts[i] = stmt
	return stmt
}

// Remove deletes the ith statement and releases its root.
func (b *Block) Remove(i int) {
	b.Stmts[i].clearOperands()
	b.Stmts = append(b.Stmts[:i], b.Stmts[i+1:]...)
}

// Roots returns the root of every statement in order.
func (b *Block) Roots() []*Node {
	roots := make([]*Node, len(b.Stmts))
	for i, stmt := range b.Stmts {
		roots[i] = stmt.Root()
	}
	return roots
}

// Walk visits every node reachable from the block once, children before
// parents.
func (b *Block) Walk(visit func(n *Node)) {
	seen := make(map[*Node]bool)
	var walk func(n *Node)
	walk = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, c := range n.Children() {
			walk(c)
		}
		visit(n)
	}
	for _, stmt := range b.Stmts {
		walk(stmt.Root())
	}
}
