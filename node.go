package latexenv

type Kind int

const (
	TextKind Kind = iota
	DocumentKind
	CommandKind
	GroupKind
	OptionalKind
	MathKind
	CommentKind
	RawKind
	EnvironmentKind
	BeginKind
	EndKind
	ContentKind
)

func (k Kind) String() string {
	switch k {
	case TextKind:
		return "text"
	case DocumentKind:
		return "document"
	case CommandKind:
		return "command"
	case GroupKind:
		return "group"
	case OptionalKind:
		return "optional"
	case MathKind:
		return "math"
	case CommentKind:
		return "comment"
	case RawKind:
		return "raw"
	case EnvironmentKind:
		return "environment"
	case BeginKind:
		return "begin"
	case EndKind:
		return "end"
	case ContentKind:
		return "content"
	default:
		return "unknown"
	}
}

// Span is a half-open range of byte offsets [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Node is an element of the syntax tree. Data depends on the kind:
//   - text and comment nodes keep their source text
//   - commands keep the command name, for example \label
//   - groups keep "{}" or "[]", or only the opening bracket if the group is not closed
//   - environment, begin and end nodes keep the environment name
//   - math nodes keep the delimiter
type Node struct {
	Kind     Kind
	Data     string
	Span     Span
	Children []*Node

	parent *Node
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) append(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// Walk visits the node and its descendants in document order. Children of a
// node are skipped when fn returns false for it.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// child returns the first direct child of the given kind.
func (n *Node) child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}

	return nil
}

// closed reports whether a group node has its closing bracket.
func (n *Node) closed() bool {
	return len(n.Data) == 2
}

// inner returns the span of a group without its brackets.
func (n *Node) inner() Span {
	s := Span{Start: n.Span.Start + 1, End: n.Span.End}
	if n.closed() {
		s.End--
	}

	if s.End < s.Start {
		s.End = s.Start
	}

	return s
}

func (n *Node) shift(delta int) {
	n.Walk(func(c *Node) bool {
		c.Span = c.Span.Shift(delta)
		return true
	})
}
