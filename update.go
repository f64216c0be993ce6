package latexenv

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidEnvironment = errors.New("text is not a single complete environment")
	ErrDetached           = errors.New("environment is not part of the document anymore")
)

// UpdateText replaces the whole environment, markers included, with text. The
// text must be exactly one terminated environment with a name. The node is
// updated in place, so the returned host is the environment itself. When the
// text is rejected the document is left untouched.
//
// Handles of environments nested in the old text are detached by the update.
func (e *Environment) UpdateText(text string) (InjectionHost, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if !e.attached() {
		return nil, fmt.Errorf("update environment %v: %w", e.node.Data, ErrDetached)
	}

	replacement, source, err := standalone(text, enclosing(e.node))
	if err != nil {
		return nil, fmt.Errorf("update environment: %w", err)
	}

	e.doc.replace(e.node, replacement, source)

	return e, nil
}

// standalone parses text in the content of environments named enclosing and
// makes sure it is a single complete environment. An \end of one of enclosing
// environments leaves the environment unterminated, so such text is rejected.
func standalone(text string, enclosing []string) (*Node, string, error) {
	doc := parseWithin(text, enclosing)

	if len(doc.root.Children) != 1 || doc.root.Children[0].Kind != EnvironmentKind {
		return nil, "", ErrInvalidEnvironment
	}

	node := doc.root.Children[0]
	if node.Span != doc.root.Span {
		return nil, "", ErrInvalidEnvironment
	}

	if node.Data == "" {
		return nil, "", fmt.Errorf("%w: environment name is missing", ErrInvalidEnvironment)
	}

	end := node.child(EndKind)
	if end == nil {
		return nil, "", fmt.Errorf("%w: environment %v is not terminated", ErrInvalidEnvironment, node.Data)
	}

	if end.Data != node.Data {
		return nil, "", fmt.Errorf("%w: environment %v is terminated by \\end{%v}", ErrInvalidEnvironment, node.Data, end.Data)
	}

	return node, doc.text, nil
}

// enclosing returns names of environments n is nested in, outermost first
func enclosing(n *Node) (names []string) {
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind == EnvironmentKind {
			names = append(names, p.Data)
		}
	}

	slices.Reverse(names)
	return
}

// replace splices source in place of old node and moves replacement content into old node
func (d *Document) replace(old, replacement *Node, source string) {
	start, end := old.Span.Start, old.Span.End
	delta := len(source) - (end - start)

	d.untrack(old)
	d.text = d.text[:start] + source + d.text[end:]

	for n := old.parent; n != nil; n = n.parent {
		n.Span.End += delta
	}

	d.root.Walk(func(n *Node) bool {
		if n == old {
			return false
		}

		if n.Span.Start >= end {
			n.Span = n.Span.Shift(delta)
		}

		return true
	})

	replacement.shift(start)

	old.Data = replacement.Data
	old.Span = replacement.Span
	old.Children = nil
	for _, child := range replacement.Children {
		old.append(child)
	}

	d.track(old)
}
