package ir

// User is a node or statement that refers to nodes through its
// operands.
type User interface {
	Operands() []*Use
	NOperands() int
	Operand(n int) *Use
	SetOperand(n int, def *Node)
}

// Use is an edge between a node and one operand slot of its user.
type Use struct {
	def     *Node
	user    User
	operand int
}

// Def returns the referenced node.
func (use *Use) Def() *Node { return use.def }

// User returns the user and the user's operand index.
func (use *Use) User() (User, int) { return use.user, use.operand }

// setDef moves the use to def. The new definition gains its use before
// the old one loses it, so a node that is moved below itself stays
// alive.
func (use *Use) setDef(def *Node) {
	if use.def == def {
		return
	}
	old := use.def
	use.def = def
	if def != nil {
		def.addUse(use)
	}
	if old != nil {
		old.removeUse(use)
	}
}

// userBase implements the User interface.
type userBase struct {
	operands []*Use
}

// Operands returns the user's operands.
func (user *userBase) Operands() []*Use { return user.operands }

// NOperands returns the number of operands.
func (user *userBase) NOperands() int { return len(user.operands) }

// Operand returns the specified operand.
func (user *userBase) Operand(n int) *Use { return user.operands[n] }

// SetOperand sets the specified operand to a node and updates the use
// lists.
func (user *userBase) SetOperand(n int, def *Node) {
	user.operands[n].setDef(def)
}

// initOperands initializes user operands. User is passed as a parameter
// because Use needs the full User, not the embedded userBase.
func (user *userBase) initOperands(u User, defs ...*Node) {
	user.operands = make([]*Use, len(defs))
	for i, def := range defs {
		user.operands[i] = &Use{nil, u, i}
		user.operands[i].setDef(def)
	}
}

// clearOperands drops all operands and releases their nodes.
func (user *userBase) clearOperands() {
	for _, operand := range user.operands {
		operand.setDef(nil)
	}
	user.operands = nil
}

// usesNode returns whether an operand refers to the node.
func (user *userBase) usesNode(def *Node) bool {
	for _, operand := range user.operands {
		if operand.def == def {
			return true
		}
	}
	return false
}

// addUse records a use of the node. A node that was released and is
// referenced again takes back the uses of its own operands.
func (n *Node) addUse(use *Use) {
	n.uses = append(n.uses, use)
	if len(n.uses) == 1 && n.released {
		n.released = false
		for _, operand := range n.operands {
			if operand.def != nil {
				operand.def.addUse(operand)
			}
		}
	}
}

// removeUse removes a use from the use list. When the last use goes
// away, the node releases its operands recursively but keeps referring
// to them, so it can be revived.
func (n *Node) removeUse(use *Use) bool {
	for i := range n.uses {
		if n.uses[i] == use {
			copy(n.uses[i:], n.uses[i+1:])
			n.uses = n.uses[:len(n.uses)-1]
			if len(n.uses) == 0 {
				n.released = true
				for _, operand := range n.operands {
					if operand.def != nil {
						operand.def.removeUse(operand)
					}
				}
			}
			return true
		}
	}
	return false
}

// ReplaceUsesWith redirects every use of the node to other.
func (n *Node) ReplaceUsesWith(other *Node) {
	if other == n {
		return
	}
	for len(n.uses) != 0 {
		n.uses[len(n.uses)-1].setDef(other)
	}
}

// Replace substitutes def for the node in the given operand slot of
// user. The old node is released when this was its last use.
func Replace(user User, slot int, def *Node) {
	user.SetOperand(slot, def)
}
