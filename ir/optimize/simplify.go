// Package optimize simplifies decimal arithmetic in IR blocks.
//
// The Simplifier rewrites trees of packed, zoned, and decimal floating
// point operations into cheaper equivalent trees. Every rewrite keeps the
// value, sign, and truncation behavior of the tree it replaces.
package optimize // import "github.com/andrewarchi/decsimp/ir/optimize"

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/andrewarchi/decsimp/ir"
)

// maxRounds bounds the passes over a block while looking for a fixpoint.
const maxRounds = 16

// Simplifier rewrites decimal trees. A Simplifier is not safe for
// concurrent use, but independent Simplifiers may run concurrently on
// separate blocks.
type Simplifier struct {
	caps Capabilities
	gate Gate
	log  *zap.Logger

	seq     int
	changed bool
	visited map[*ir.Node]bool
	labels  *ir.Formatter
	block   *ir.Block
	stmt    int
}

// Option configures a Simplifier.
type Option func(s *Simplifier)

// WithCapabilities sets the target capabilities and run order.
func WithCapabilities(caps Capabilities) Option {
	return func(s *Simplifier) { s.caps = caps }
}

// WithGate sets the gate consulted before each transformation.
func WithGate(gate Gate) Option {
	return func(s *Simplifier) { s.gate = gate }
}

// WithLogger sets the logger that receives a Debug entry per
// transformation.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simplifier) { s.log = log }
}

// New constructs a Simplifier.
func New(opts ...Option) *Simplifier {
	s := &Simplifier{gate: AllowAll{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.gate == nil {
		s.gate = AllowAll{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Seq returns the number of transformations offered to the gate so far.
func (s *Simplifier) Seq() int { return s.seq }

// SimplifyBlock simplifies every statement of the block in order until
// no further transformation applies. It reports whether any
// transformation was committed.
func (s *Simplifier) SimplifyBlock(b *ir.Block) bool {
	s.block = b
	s.labels = ir.NewFormatter()
	defer func() { s.block = nil }()
	changed := false
	for round := 0; round < maxRounds; round++ {
		s.changed = false
		s.visited = make(map[*ir.Node]bool)
		for s.stmt = 0; s.stmt < len(b.Stmts); s.stmt++ {
			s.simplifyStatement(b.Stmts[s.stmt])
		}
		if !s.changed {
			break
		}
		changed = true
		s.log.Debug("round", zap.Int("round", round), zap.Int("seq", s.seq))
	}
	return changed
}

func (s *Simplifier) simplifyStatement(stmt *ir.Statement) {
	before := reachable(stmt.Root())
	if root := s.Simplify(stmt.Root()); root != stmt.Root() {
		stmt.SetRoot(root)
	}
	s.anchorRemoved(before, stmt)
}

// Simplify simplifies a tree and returns its replacement. A node is
// simplified at most once per round.
func (s *Simplifier) Simplify(n *ir.Node) *ir.Node {
	if s.visited == nil {
		s.visited = make(map[*ir.Node]bool)
	}
	if s.labels == nil {
		s.labels = ir.NewFormatter()
	}
	if s.visited[n] {
		return n
	}
	return s.simplify(n)
}

// simplify simplifies a node even when it has been visited. Handlers use
// it on nodes they changed.
func (s *Simplifier) simplify(n *ir.Node) *ir.Node {
	s.visited[n] = true
	s.simplifyChildren(n)
	r := s.dispatch(n)
	if r != n && n.RefCount() > 1 {
		s.redirectUses(n, r)
	}
	return r
}

func (s *Simplifier) simplifyChildren(n *ir.Node) {
	for i := 0; i < n.NumChildren(); i++ {
		c := n.Child(i)
		if r := s.Simplify(c); r != c {
			n.SetChild(i, r)
		}
	}
}

// redirectUses moves every other use of a shared node to its
// replacement, so all users keep seeing one commoned value.
func (s *Simplifier) redirectUses(n, r *ir.Node) {
	uses := append([]*ir.Use(nil), n.Uses()...)
	for _, use := range uses {
		user, slot := use.User()
		if u, ok := user.(*ir.Node); ok && u == r {
			continue
		}
		ir.Replace(user, slot, r)
	}
}

// anchorRemoved keeps the evaluation point of nodes that dropped out of
// the statement but are still used by later statements, by evaluating
// them in statements of their own before it.
func (s *Simplifier) anchorRemoved(before []*ir.Node, stmt *ir.Statement) {
	if s.block == nil {
		return
	}
	after := make(map[*ir.Node]bool)
	for _, n := range reachable(stmt.Root()) {
		after[n] = true
	}
	var candidates []*ir.Node
	for _, n := range before {
		if !after[n] && n.RefCount() > 0 && !n.Op().IsLoadConst() {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return
	}
	earlier := make(map[*ir.Node]bool)
	for _, prev := range s.block.Stmts[:s.stmt] {
		for _, n := range reachable(prev.Root()) {
			earlier[n] = true
		}
	}
	covered := make(map[*ir.Node]bool)
	for _, c := range candidates {
		for _, d := range reachable(c) {
			if d != c {
				covered[d] = true
			}
		}
	}
	for _, c := range candidates {
		if earlier[c] || covered[c] {
			continue
		}
		if s.log.Core().Enabled(zap.DebugLevel) {
			s.log.Debug("anchor", zap.String("node", s.ref(c).String()), zap.Int("stmt", s.stmt))
		}
		s.block.InsertBefore(s.stmt, c)
		s.stmt++
	}
}

// reachable returns the nodes of a tree in evaluation order, children
// before parents.
func reachable(root *ir.Node) []*ir.Node {
	var nodes []*ir.Node
	seen := make(map[*ir.Node]bool)
	var walk func(n *ir.Node)
	walk = func(n *ir.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, c := range n.Children() {
			walk(c)
		}
		nodes = append(nodes, n)
	}
	walk(root)
	return nodes
}

// allow offers a transformation to the gate and logs the decision.
// Handlers call it before changing any node.
func (s *Simplifier) allow(rule, format string, args ...interface{}) bool {
	s.seq++
	debug := s.log.Core().Enabled(zap.DebugLevel)
	var desc string
	if debug || needsDescription(s.gate) {
		desc = fmt.Sprintf(format, args...)
	}
	ok := s.gate.Allow(s.seq, desc)
	if debug {
		fields := []zap.Field{zap.Int("seq", s.seq), zap.String("rule", rule), zap.String("desc", desc)}
		if !ok {
			fields = append(fields, zap.Bool("refused", true))
		}
		s.log.Debug("transform", fields...)
	}
	if ok {
		s.changed = true
	}
	return ok
}

// nodeRef formats a node as its op and label only when printed.
type nodeRef struct {
	s *Simplifier
	n *ir.Node
}

func (s *Simplifier) ref(n *ir.Node) nodeRef { return nodeRef{s, n} }

func (r nodeRef) String() string {
	return r.n.Op().String() + " " + r.s.labels.Label(r.n)
}

// replaceWithChild returns the child that replaces n. With
// correctPrecision, a BCD node that truncated its BCD child becomes a
// modify precision of the child. The caller checks canReplaceWithChild
// first.
func (s *Simplifier) replaceWithChild(n, child *ir.Node, correctPrecision bool) *ir.Node {
	if correctPrecision && needsPrecisionCorrection(n, child) {
		mod := ir.NewNode(ir.ModifyPrecisionOp(child.Type()), child)
		mod.SetPrecision(n.Precision())
		return mod
	}
	return child
}

// canReplaceWithChild returns whether replaceWithChild can keep the
// precision of n.
func canReplaceWithChild(n, child *ir.Node, correctPrecision bool) bool {
	if !correctPrecision || !needsPrecisionCorrection(n, child) {
		return true
	}
	return ir.ModifyPrecisionOp(child.Type()) != ir.BadOp
}

func needsPrecisionCorrection(n, child *ir.Node) bool {
	return n.Type().IsBCD() && child.Type().IsBCD() && n.Precision() < child.Precision()
}

// dispatch applies the rules of the node's op to a node whose children
// are simplified.
func (s *Simplifier) dispatch(n *ir.Node) *ir.Node {
	op := n.Op()
	switch op {
	case ir.Zdslestore, ir.Zdstsstore:
		return s.zonedStore(n)
	case ir.Pdstore, ir.Zdstore:
		return s.pdstore(n)

	case ir.Zd2zdsle:
		return s.zd2zdsle(n)
	case ir.Zdsle2zd:
		return s.zdsle2zd(n)
	case ir.Zdsle2pd, ir.Udsl2ud, ir.Udst2ud, ir.Zdsls2zd, ir.Zdsts2zd:
		return s.separateSignToEmbedded(n)
	case ir.Zd2pd:
		return s.zd2pd(n)
	case ir.Pd2zd:
		return s.pd2zd(n)
	case ir.Zd2zdsls, ir.Zd2zdsts:
		return s.zd2zdsls(n)
	case ir.Zdsls2pd, ir.Zdsts2pd:
		return s.zdsls2pd(n)
	case ir.Pd2zdsls, ir.Pd2zdsts:
		return s.pd2zdsls(n)
	case ir.Pd2ud:
		return s.pd2ud(n)
	case ir.Ud2pd:
		return s.ud2pd(n)
	case ir.Udsl2pd, ir.Udst2pd:
		return s.udsx2pd(n)
	case ir.Pd2udsl, ir.Pd2udst:
		return s.pd2udsl(n)
	case ir.Pd2zdslsSetSign, ir.Pd2zdstsSetSign, ir.Zd2zdslsSetSign, ir.Zd2zdstsSetSign,
		ir.Pd2udslSetSign, ir.Pd2udstSetSign, ir.Zdsls2pdSetSign, ir.Zdsts2pdSetSign,
		ir.Udsl2pdSetSign, ir.Udst2pdSetSign, ir.Zdsle2zdSetSign:
		return s.setSignConversion(n)

	case ir.Pd2i, ir.Pd2iu, ir.Pd2l, ir.Pd2lu:
		return s.pd2integral(n)
	case ir.I2pd, ir.L2pd, ir.Iu2pd, ir.Lu2pd:
		return s.integral2pd(n)
	case ir.F2pd, ir.D2pd:
		return n
	case ir.Pd2f, ir.Pd2d:
		return s.pd2float(n)

	case ir.Pdadd:
		return s.pdadd(n)
	case ir.Pdsub:
		return s.pdsub(n)
	case ir.Pdmul:
		return s.pdmul(n)
	case ir.Pddiv:
		return s.pddiv(n)
	case ir.Pdneg:
		return s.pdneg(n)
	case ir.Pdshl, ir.PdModifyPrecision:
		return s.pdshl(n)
	case ir.Pdshr:
		return s.pdshr(n)
	case ir.PdshlSetSign:
		return s.pdshlSetSign(n)
	case ir.PdshrSetSign:
		return s.pdshrSetSign(n)
	case ir.PdSetSign, ir.ZdSetSign:
		return s.setSign(n)
	case ir.Pdclean:
		return s.pdclean(n)
	case ir.Pdclear:
		return s.pdclear(n)
	case ir.PdclearSetSign:
		return s.pdclearSetSign(n)
	}

	switch {
	case isDFPFamily(op, ir.Pd2df, ir.Pd2dfAbs):
		return s.pd2dfp(n)
	case isDFPFamily(op, ir.Df2pd, ir.Df2pdClean):
		return s.dfp2pd(n)
	case isDFPFamily(op, ir.Df2pdSetSign, ir.Df2zdSetSign):
		return s.dfp2bcdSetSign(n)
	case isDFPFamily(op, ir.Zd2df, ir.Zd2dfAbs):
		return s.zd2dfp(n)
	case isDFPFamily(op, ir.Df2zd):
		return s.dfp2zd(n)
	case isDFPFamily(op, ir.Df2i, ir.Df2l):
		return s.dfp2integral(n)
	case isDFPFamily(op, ir.I2df, ir.L2df):
		return s.integral2dfp(n)
	case isDFPFamily(op, ir.Dfabs, ir.DfSetNegative):
		return s.dfpSetSign(n)
	case isDFPFamily(op, ir.Dffloor):
		return s.dfpFloor(n)
	case isDFPFamily(op, ir.Dfadd, ir.Dfmul, ir.Dfdiv):
		return s.dfpArith(n)
	case isDFPFamily(op, ir.DfModifyPrecision):
		return s.dfpModifyPrecision(n)
	case op.IsCompare():
		return s.dfpCompare(n)
	}
	// Loads, constants, DFP shifts, cleans and subtracts, conversions
	// among DFP types, zoned conversions to DFP with a clean sign, and
	// binary operations only have their children simplified.
	return n
}

// isDFPFamily returns whether op is the df, dd, or de member of one of
// the families named by their df member.
func isDFPFamily(op ir.Op, families ...ir.Op) bool {
	for _, f := range families {
		if f <= op && op < f+3 {
			return true
		}
	}
	return false
}
