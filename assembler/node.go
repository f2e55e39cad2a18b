package assembler

// NodeType defines the type of an assembly node.
type NodeType int

const (
	// NodeInstruction type.
	NodeInstruction NodeType = iota
	// NodeLabel type.
	NodeLabel
	// NodeDirective type.
	NodeDirective
)

// Node represents one parsed element from the assembly source.
type Node struct {
	Type     NodeType
	Line     int
	Label    string
	Mnemonic string
	Operands []token
	// Args is the raw operand text, for directives.
	Args string
	Size int // Still used to track size between passes
	form *form
}
