package latexenv

import (
	"sync"
)

// Document owns the source text and the syntax tree built from it.
//
// Methods of the document and its environments are safe for concurrent use.
// UpdateText of any environment in the document is exclusive: it waits for
// readers and blocks them until the tree is consistent again.
//
// Nodes returned by Root and Node are live and are not guarded: UpdateText
// changes them in place. Walk them with Inspect when environments may be
// updated concurrently.
type Document struct {
	mu   sync.RWMutex
	text string
	root *Node
	envs map[*Node]*Environment
}

func newDocument(text string, root *Node) *Document {
	d := &Document{text: text, root: root, envs: map[*Node]*Environment{}}
	d.track(root)
	return d
}

// track creates environment handles for environment nodes in the subtree, existing handles are kept
func (d *Document) track(n *Node) {
	n.Walk(func(c *Node) bool {
		if c.Kind != EnvironmentKind {
			return true
		}

		if _, ok := d.envs[c]; !ok {
			d.envs[c] = &Environment{doc: d, node: c}
		}

		return true
	})
}

// untrack drops handles of environments nested in n
func (d *Document) untrack(n *Node) {
	for _, child := range n.Children {
		child.Walk(func(c *Node) bool {
			delete(d.envs, c)
			return true
		})
	}
}

func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.text
}

func (d *Document) Root() *Node {
	return d.root
}

// Inspect calls fn with the root of the tree, which does not change until fn
// returns. fn must not call methods of the document or its environments.
func (d *Document) Inspect(fn func(root *Node)) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	fn(d.root)
}

// NodeText returns source text of a node
func (d *Document) NodeText(n *Node) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.slice(n.Span)
}

func (d *Document) slice(s Span) string {
	start, end := max(s.Start, 0), min(s.End, len(d.text))
	if start >= end {
		return ""
	}

	return d.text[start:end]
}

// Environments returns all environments of the document, including nested ones, in document order.
func (d *Document) Environments() []*Environment {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.environments()
}

func (d *Document) environments() (envs []*Environment) {
	d.root.Walk(func(n *Node) bool {
		if n.Kind == EnvironmentKind {
			envs = append(envs, d.envs[n])
		}

		return true
	})

	return
}

// EnvironmentAt returns the innermost environment which covers offset.
func (d *Document) EnvironmentAt(offset int) (*Environment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var found *Environment
	d.root.Walk(func(n *Node) bool {
		if !n.Span.Contains(offset) {
			return false
		}

		if n.Kind == EnvironmentKind {
			found = d.envs[n]
		}

		return true
	})

	return found, found != nil
}

// ResolveLabel finds the first environment in document order which declares the label.
func (d *Document) ResolveLabel(label string) (*Environment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if label == "" {
		return nil, false
	}

	for _, env := range d.environments() {
		if env.label() == label {
			return env, true
		}
	}

	return nil, false
}

// Stubs summarizes all environments of the document.
func (d *Document) Stubs() []EnvironmentStub {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var stubs []EnvironmentStub
	for _, env := range d.environments() {
		stubs = append(stubs, env.stub())
	}

	return stubs
}

// Materialize finds the environment a stub was built from. It fails when the
// document changed so that there is no environment with the stub name at the
// stub offset anymore.
func (d *Document) Materialize(stub EnvironmentStub) (*Environment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, env := range d.environments() {
		if env.node.Span.Start == stub.Start && env.node.Data == stub.Name {
			return env, true
		}

		if env.node.Span.Start > stub.Start {
			break
		}
	}

	return nil, false
}
