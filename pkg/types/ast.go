package types

// NodeType identifies the type of a syntax tree node.
type NodeType string

// Syntax tree node types produced by the parser.
const (
	// Literals
	NodeNull    NodeType = "null"
	NodeBoolean NodeType = "boolean" // Value is "true" or "false"
	NodeString  NodeType = "string"  // Value holds the unescaped text
	NodeNumber  NodeType = "number"  // Value holds the literal text, sign included

	// Navigation
	NodeDot   NodeType = "dot"   // .key, or the bare . when Value is empty; LHS is the chain parent
	NodeSlice NodeType = "slice" // LHS[Expressions[0] : Expressions[1]]

	// References
	NodeVariable NodeType = "variable" // $name
	NodeCall     NodeType = "call"     // name(args) or prefix:name(args)

	// Constructors
	NodeArray     NodeType = "array"     // [e1, e2, ...]
	NodeArrayFor  NodeType = "arrayfor"  // [for (Condition) Lets Body if (Filter)]
	NodeObject    NodeType = "object"    // {Lets Pairs Matcher}
	NodeObjectFor NodeType = "objectfor" // {for (Condition) Lets LHS : RHS if (Filter)}
	NodePair      NodeType = "pair"      // LHS : RHS
	NodeMatcher   NodeType = "matcher"   // * - Minus : Body

	// Operators and control flow
	NodeBinary NodeType = "binary" // Value holds the operator
	NodeIf     NodeType = "if"

	// Declarations
	NodeLet    NodeType = "let"
	NodeDef    NodeType = "def"
	NodeImport NodeType = "import" // import "Value" as Prefix
	NodeModule NodeType = "module" // a whole compilation unit
)

// ASTNode is a node of the raw syntax tree. Only the fields relevant to the
// node's Type are set.
type ASTNode struct {
	Type     NodeType
	Value    string
	Location Location

	// Relations
	LHS         *ASTNode   // binary left side, chain parent, pair key
	RHS         *ASTNode   // binary right side, pair value
	Expressions []*ASTNode // call arguments, array elements, slice bounds

	// Blocks
	Lets      []*ASTNode // let nodes evaluated before Body
	Pairs     []*ASTNode
	Matcher   *ASTNode
	Condition *ASTNode // if test, for sequence
	Body      *ASTNode // if then-branch, for body, def body, module body, let value
	Else      *ASTNode
	ElseLets  []*ASTNode
	Filter    *ASTNode // trailing if (...) in comprehensions

	// Attributes
	Params []string // def parameters
	Minus  []string // matcher exclusions
	Prefix string   // module prefix of a call or import
	Colon  bool     // slice has a colon

	// Module parts
	Imports   []*ASTNode
	Functions []*ASTNode
}

// NewASTNode creates a new node of the given type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, loc Location) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Location: loc,
	}
}

// Loc returns a pointer to a copy of the node location, for error reporting.
func (n *ASTNode) Loc() *Location {
	if n == nil {
		return nil
	}
	l := n.Location
	return &l
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// The arena pre-allocates fixed-size chunks of ASTNode structs and returns
// pointers into them, so a typical template costs a handful of allocations
// instead of one per node. The arena lives as long as any node it returned is
// reachable.
//
// NodeArena is not safe for concurrent use. Each parser owns its own arena.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
	}
}

// Alloc returns a pointer to a zero-valued ASTNode with Type and Location set.
func (a *NodeArena) Alloc(nodeType NodeType, loc Location) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Location = loc
	return n
}

// String returns the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}
