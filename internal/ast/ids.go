package ast

type (
	// NodeID адресует зелёный узел в арене дерева.
	NodeID uint32
	// TokenID адресует токен в арене дерева.
	TokenID uint32
)

const (
	NoNodeID  NodeID  = 0
	NoTokenID TokenID = 0
)

func (id NodeID) IsValid() bool  { return id != NoNodeID }
func (id TokenID) IsValid() bool { return id != NoTokenID }

// Child is one slot of a node: either a node or a token, never both.
type Child struct {
	Node  NodeID
	Token TokenID
}

func NodeChild(id NodeID) Child   { return Child{Node: id} }
func TokenChild(id TokenID) Child { return Child{Token: id} }

func (c Child) IsNode() bool  { return c.Node.IsValid() }
func (c Child) IsToken() bool { return c.Token.IsValid() }
