package latexenv

import (
	"regexp"
	"strings"
)

var magicLanguage = regexp.MustCompile(`^%!\s*[Ll]anguage\s*=\s*(\S+)\s*$`)

// InjectionHost is a node which can host a fragment written in another language.
type InjectionHost interface {
	// IsValidHost reports whether a fragment can be injected into the node.
	IsValidHost() bool

	// UpdateText replaces text of the node and returns the host which now
	// holds the text.
	UpdateText(text string) (InjectionHost, error)

	// CreateLiteralTextEscaper returns escaper bound to the node.
	CreateLiteralTextEscaper() LiteralTextEscaper
}

// StubBased is a node which can be summarized into a stub of type S.
type StubBased[S any] interface {
	Stub() S
}

// EnvironmentNode is \begin{name} ... \end{name} block.
type EnvironmentNode interface {
	InjectionHost
	StubBased[EnvironmentStub]

	BeginCommand() *BeginCommand
	EndCommand() (*EndCommand, bool)
	EnvironmentContent() (*EnvironmentContent, bool)
	EnvironmentName() string
	Label() string
}

var _ EnvironmentNode = (*Environment)(nil)

// Environment is a handle of an environment node in a document. The handle
// stays the same for the lifetime of the node, including updates of its text.
type Environment struct {
	doc  *Document
	node *Node
}

// BeginCommand, EndCommand and EnvironmentContent are parts of an environment.
// A part is looked up in its environment on every call, so it follows updates
// of the environment text. A part which is gone, or whose environment is
// detached, has empty text and span.
type BeginCommand struct {
	env *Environment
}

type EndCommand struct {
	env *Environment
}

type EnvironmentContent struct {
	env *Environment
}

func (e *Environment) Document() *Document {
	return e.doc
}

// Node returns the environment node, which UpdateText changes in place.
func (e *Environment) Node() *Node {
	return e.node
}

func (e *Environment) Span() Span {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	return e.node.Span
}

func (e *Environment) Text() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	return e.doc.slice(e.node.Span)
}

// BeginCommand returns \begin{name} marker, every environment has one.
func (e *Environment) BeginCommand() *BeginCommand {
	return &BeginCommand{env: e}
}

// EndCommand returns \end{name} marker, it is missing if the environment is not terminated.
func (e *Environment) EndCommand() (*EndCommand, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if e.part(EndKind) == nil {
		return nil, false
	}

	return &EndCommand{env: e}, true
}

// EnvironmentContent returns everything between the markers, it is missing if the environment body is empty.
func (e *Environment) EnvironmentContent() (*EnvironmentContent, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if e.part(ContentKind) == nil {
		return nil, false
	}

	return &EnvironmentContent{env: e}, true
}

// EnvironmentName returns name given to \begin, or empty string if the name is missing or malformed.
func (e *Environment) EnvironmentName() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	return e.node.Data
}

// Label returns label declared for the environment or empty string.
//
// Listings take their label from the label option: \begin{lstlisting}[label=lst:1].
// Other environments use the first \label command of their own content, labels
// of nested environments are not taken into account.
func (e *Environment) Label() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	return e.label()
}

// IsValidHost reports whether a fragment can be injected into the environment
// content. Unterminated, unnamed and mismatched environments are not valid
// hosts, neither is comment environment, which LaTeX discards.
func (e *Environment) IsValidHost() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if !e.attached() {
		return false
	}

	name := e.node.Data
	end := e.node.child(EndKind)

	return name != "" && name != "comment" && end != nil && end.Data == name
}

// InjectedLanguage returns the language of the environment content. It is
// taken from a magic comment right before the environment (%! language = python),
// the language option of lstlisting, the first argument of minted or implied
// by the environment name, in this order.
func (e *Environment) InjectedLanguage() (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	lang := e.injectedLanguage()
	return lang, lang != ""
}

func (e *Environment) Stub() EnvironmentStub {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	return e.stub()
}

func (e *Environment) stub() EnvironmentStub {
	return EnvironmentStub{
		Name:     e.node.Data,
		Label:    e.label(),
		Language: e.injectedLanguage(),
		Start:    e.node.Span.Start,
		End:      e.node.Span.End,
	}
}

func (e *Environment) attached() bool {
	return e.doc.envs[e.node] == e
}

func (e *Environment) begin() *Node {
	return e.node.child(BeginKind)
}

// part returns child node of the given kind, if the environment is still in the document
func (e *Environment) part(kind Kind) *Node {
	if !e.attached() {
		return nil
	}

	return e.node.child(kind)
}

// read calls fn with the current part node under read lock, fn is not called if the part is gone
func (e *Environment) read(kind Kind, fn func(n *Node)) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if n := e.part(kind); n != nil {
		fn(n)
	}
}

func (e *Environment) label() string {
	name := e.node.Data

	if labelAsOption(name) {
		return unbrace(options(e.doc, e.begin())["label"])
	}

	content := e.node.child(ContentKind)
	if content == nil {
		return ""
	}

	var label string
	content.Walk(func(n *Node) bool {
		if label != "" || n.Kind == EnvironmentKind {
			return false
		}

		if n.Kind == CommandKind && n.Data == "\\label" {
			if group := n.child(GroupKind); group != nil {
				label = strings.TrimSpace(e.doc.slice(group.inner()))
			}

			return false
		}

		return true
	})

	return label
}

func (e *Environment) injectedLanguage() string {
	if lang := e.magicLanguage(); lang != "" {
		return lang
	}

	begin := e.begin()

	switch e.node.Data {
	case "lstlisting":
		if lang := unbrace(options(e.doc, begin)["language"]); lang != "" {
			return lang
		}
	case "minted":
		if params := parameters(e.doc, begin); len(params) > 0 && params[0] != "" {
			return params[0]
		}
	}

	return language(e.node.Data)
}

// magicLanguage looks for %! language = ... comment before the environment, only whitespaces may separate them
func (e *Environment) magicLanguage() string {
	parent := e.node.parent
	if parent == nil {
		return ""
	}

	index := -1
	for i, sibling := range parent.Children {
		if sibling == e.node {
			index = i
			break
		}
	}

	for i := index - 1; i >= 0; i-- {
		sibling := parent.Children[i]

		if sibling.Kind == TextKind && strings.TrimSpace(sibling.Data) == "" {
			continue
		}

		if sibling.Kind != CommentKind {
			return ""
		}

		if match := magicLanguage.FindStringSubmatch(sibling.Data); match != nil {
			return match[1]
		}

		return ""
	}

	return ""
}

// options parses the first optional parameter of a command as key-value pairs
func options(doc *Document, n *Node) map[string]string {
	if opt := n.child(OptionalKind); opt != nil {
		return KeyValue(doc.slice(opt.inner()))
	}

	return map[string]string{}
}

// parameters returns text of obligatory parameters of a command
func parameters(doc *Document, n *Node) (params []string) {
	for _, c := range n.Children {
		if c.Kind == GroupKind {
			params = append(params, strings.TrimSpace(doc.slice(c.inner())))
		}
	}

	return
}

// EnvironmentName returns name given to \begin, or empty string if the name is missing or malformed.
func (b *BeginCommand) EnvironmentName() (name string) {
	b.env.read(BeginKind, func(n *Node) { name = n.Data })
	return
}

// Options returns the first optional parameter parsed as key-value pairs.
func (b *BeginCommand) Options() map[string]string {
	opts := map[string]string{}
	b.env.read(BeginKind, func(n *Node) { opts = options(b.env.doc, n) })
	return opts
}

// Parameters returns text of obligatory parameters following \begin{name}.
func (b *BeginCommand) Parameters() (params []string) {
	b.env.read(BeginKind, func(n *Node) { params = parameters(b.env.doc, n) })
	return
}

func (b *BeginCommand) Node() (node *Node) {
	b.env.read(BeginKind, func(n *Node) { node = n })
	return
}

func (b *BeginCommand) Span() (span Span) {
	b.env.read(BeginKind, func(n *Node) { span = n.Span })
	return
}

func (b *BeginCommand) Text() (text string) {
	b.env.read(BeginKind, func(n *Node) { text = b.env.doc.slice(n.Span) })
	return
}

func (c *EndCommand) EnvironmentName() (name string) {
	c.env.read(EndKind, func(n *Node) { name = n.Data })
	return
}

func (c *EndCommand) Node() (node *Node) {
	c.env.read(EndKind, func(n *Node) { node = n })
	return
}

func (c *EndCommand) Span() (span Span) {
	c.env.read(EndKind, func(n *Node) { span = n.Span })
	return
}

func (c *EndCommand) Text() (text string) {
	c.env.read(EndKind, func(n *Node) { text = c.env.doc.slice(n.Span) })
	return
}

func (c *EnvironmentContent) Node() (node *Node) {
	c.env.read(ContentKind, func(n *Node) { node = n })
	return
}

func (c *EnvironmentContent) Span() (span Span) {
	c.env.read(ContentKind, func(n *Node) { span = n.Span })
	return
}

func (c *EnvironmentContent) Text() (text string) {
	c.env.read(ContentKind, func(n *Node) { text = c.env.doc.slice(n.Span) })
	return
}
