package latexenv

import (
	"fmt"
	"io"
	"strings"
)

// Parser builds a syntax tree out of tokens. It never fails on malformed
// markup: unterminated environments and groups end where the input ends, and
// unmatched closing brackets are kept as text.
type Parser struct {
	tokens  *Tokenizer
	pending *token
	open    []string // names of environments being parsed, innermost last
}

type token struct {
	value any
	start int
	end   int
}

func Parse(r io.RuneScanner) (*Document, error) {
	return NewParser(r).Parse()
}

// ParseString parses a document held in memory, it can not fail.
func ParseString(s string) *Document {
	return parseWithin(s, nil)
}

func NewParser(r io.RuneScanner) *Parser {
	return &Parser{tokens: NewTokenizer(r)}
}

// parseWithin parses text as if it was placed in the content of environments
// named enclosing, outermost first.
func parseWithin(text string, enclosing []string) *Document {
	p := NewParser(strings.NewReader(text))
	p.open = append(p.open, enclosing...)

	doc, err := p.Parse()
	if err != nil {
		panic(fmt.Sprintf("parse string: %v", err))
	}

	return doc
}

func (p *Parser) Parse() (*Document, error) {
	children, _, err := p.sequence(nil)
	if err != nil {
		return nil, err
	}

	root := &Node{Kind: DocumentKind, Span: Span{End: p.tokens.Offset()}}
	for _, child := range children {
		root.append(child)
	}

	return newDocument(p.tokens.Source(), root), nil
}

func (p *Parser) next() (token, error) {
	if p.pending != nil {
		t := *p.pending
		p.pending = nil
		return t, nil
	}

	start := p.tokens.Offset()
	value, err := p.tokens.Token()
	if err != nil {
		return token{}, err
	}

	return token{value: value, start: start, end: p.tokens.Offset()}, nil
}

// back returns token to be read again by next
func (p *Parser) back(t token) {
	p.pending = &t
}

// sequence collects nodes until EOF or a token accepted by stop, which is returned as last
func (p *Parser) sequence(stop func(any) bool) (children []*Node, last *token, err error) {
	for {
		t, err := p.next()
		if err == io.EOF {
			return children, nil, nil
		}

		if err != nil {
			return nil, nil, err
		}

		if stop != nil && stop(t.value) {
			return children, &t, nil
		}

		node, err := p.parse(t)
		if err != nil {
			return nil, nil, err
		}

		// merge consequent text nodes together
		if node.Kind == TextKind && len(children) > 0 && children[len(children)-1].Kind == TextKind {
			prev := children[len(children)-1]
			prev.Data += node.Data
			prev.Span.End = node.Span.End
			continue
		}

		children = append(children, node)
	}
}

func (p *Parser) parse(t token) (*Node, error) {
	span := Span{Start: t.start, End: t.end}

	switch value := t.value.(type) {
	case Text:
		return &Node{Kind: TextKind, Data: string(value), Span: span}, nil
	case Comment:
		return &Node{Kind: CommentKind, Data: string(value), Span: span}, nil
	case Command:
		node := &Node{Kind: CommandKind, Data: string(value), Span: span}
		return node, p.parameters(node)
	case Verb:
		node := &Node{Kind: CommandKind, Data: value.Command, Span: span}
		start := t.start + len(value.Command) + len(value.Delimiter)
		node.append(&Node{Kind: RawKind, Data: value.Data, Span: Span{Start: start, End: start + len(value.Data)}})
		return node, nil
	case Math:
		node := &Node{Kind: MathKind, Data: value.Delimiter, Span: span}
		if value.Data != "" {
			start := t.start + len(value.Delimiter)
			node.append(&Node{Kind: TextKind, Data: value.Data, Span: Span{Start: start, End: start + len(value.Data)}})
		}

		return node, nil
	case ParameterStart:
		return p.group(GroupKind, t)
	case ParameterEnd:
		return &Node{Kind: TextKind, Data: "}", Span: span}, nil
	case OptionalStart:
		return &Node{Kind: TextKind, Data: "[", Span: span}, nil
	case OptionalEnd:
		return &Node{Kind: TextKind, Data: "]", Span: span}, nil
	case EnvironmentStart:
		return p.environment(t, value)
	case EnvironmentEnd:
		// \end without matching \begin
		return &Node{Kind: EndKind, Data: value.Name, Span: span}, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", t.value)
	}
}

// parameters attaches groups which immediately follow a command or \begin to it
func (p *Parser) parameters(node *Node) error {
	return p.groups(node, func(rune) bool { return true })
}

// rawParameters attaches only groups opened by brackets from allowed, in that
// order, each of them being optional.
func (p *Parser) rawParameters(node *Node, allowed string) error {
	return p.groups(node, func(char rune) bool {
		i := strings.IndexRune(allowed, char)
		if i < 0 {
			return false
		}

		allowed = allowed[i+1:]
		return true
	})
}

func (p *Parser) groups(node *Node, accept func(rune) bool) error {
	for p.pending == nil {
		char, err := p.tokens.Peek()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		if char != '{' && char != '[' || !accept(char) {
			return nil
		}

		t, err := p.next()
		if err != nil {
			return err
		}

		kind := GroupKind
		if _, ok := t.value.(OptionalStart); ok {
			kind = OptionalKind
		}

		group, err := p.group(kind, t)
		if err != nil {
			return err
		}

		node.append(group)
		node.Span.End = group.Span.End
	}

	return nil
}

// group reads {...} or [...] group. A group is not closed when it meets end of
// input or \end of an environment which is still open.
func (p *Parser) group(kind Kind, open token) (*Node, error) {
	opening, closing := "{", "}"
	if kind == OptionalKind {
		opening, closing = "[", "]"
	}

	children, last, err := p.sequence(func(v any) bool {
		switch v.(type) {
		case ParameterEnd:
			return kind == GroupKind
		case OptionalEnd:
			return kind == OptionalKind
		case EnvironmentEnd:
			return len(p.open) > 0
		default:
			return false
		}
	})

	if err != nil {
		return nil, err
	}

	node := &Node{Kind: kind, Data: opening, Span: Span{Start: open.start}}
	for _, child := range children {
		node.append(child)
	}

	switch {
	case last == nil:
		node.Span.End = p.tokens.Offset()
	case isEnvironmentEnd(last.value):
		p.back(*last)
		node.Span.End = last.start
	default:
		node.Data += closing
		node.Span.End = last.end
	}

	return node, nil
}

// environment reads \begin{name} with its parameters, content and matching \end{name}
func (p *Parser) environment(t token, start EnvironmentStart) (*Node, error) {
	env := &Node{Kind: EnvironmentKind, Data: start.Name, Span: Span{Start: t.start, End: t.end}}
	begin := &Node{Kind: BeginKind, Data: start.Name, Span: Span{Start: t.start, End: t.end}}

	p.open = append(p.open, start.Name)
	defer func() {
		p.open = p.open[:len(p.open)-1]
	}()

	var err error
	if isRaw(start.Name) {
		err = p.rawParameters(begin, rawParameters(start.Name))
	} else {
		err = p.parameters(begin)
	}

	if err != nil {
		return nil, err
	}

	env.append(begin)

	var (
		children []*Node
		last     *token
	)

	if isRaw(start.Name) && p.pending == nil {
		children, last, err = p.raw(start.Name)
	} else {
		children, last, err = p.sequence(isEnvironmentEnd)
	}

	if err != nil {
		return nil, err
	}

	end := p.tokens.Offset()
	if last != nil {
		end = last.start
	}

	if end > begin.Span.End {
		content := &Node{Kind: ContentKind, Span: Span{Start: begin.Span.End, End: end}}
		for _, child := range children {
			content.append(child)
		}

		env.append(content)
	}

	env.Span.End = end

	if last == nil {
		return env, nil
	}

	name := last.value.(EnvironmentEnd).Name
	if !p.closes(name) {
		// \end belongs to one of enclosing environments, this one is not terminated
		p.back(*last)
		return env, nil
	}

	env.append(&Node{Kind: EndKind, Data: name, Span: Span{Start: last.start, End: last.end}})
	env.Span.End = last.end

	return env, nil
}

// raw reads body of verbatim-like environment as a single node
func (p *Parser) raw(name string) ([]*Node, *token, error) {
	start := p.tokens.Offset()

	text, err := p.tokens.Raw(name)
	if err != nil {
		return nil, nil, err
	}

	var children []*Node
	if text != "" {
		children = append(children, &Node{Kind: RawKind, Data: string(text), Span: Span{Start: start, End: start + len(text)}})
	}

	t, err := p.next()
	if err == io.EOF {
		return children, nil, nil
	}

	if err != nil {
		return nil, nil, err
	}

	return children, &t, nil
}

// closes checks if \end{name} closes the innermost open environment. It does
// not if one of enclosing environments has this name, otherwise it closes the
// innermost environment even if names do not match.
func (p *Parser) closes(name string) bool {
	current := len(p.open) - 1
	if p.open[current] == name {
		return true
	}

	for i := current - 1; i >= 0; i-- {
		if p.open[i] == name {
			return false
		}
	}

	return true
}

func isEnvironmentEnd(v any) bool {
	_, ok := v.(EnvironmentEnd)
	return ok
}
