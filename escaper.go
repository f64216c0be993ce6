package latexenv

import (
	"strings"
)

// LiteralTextEscaper maps between text of a host and text seen by the fragment
// injected into it. Ranges are relative to the start of the host.
type LiteralTextEscaper interface {
	// RelevantTextRange is the part of the host available to the fragment.
	RelevantTextRange() Span

	// Decode appends the fragment text for a range of the host to out.
	Decode(rangeInHost Span, out *strings.Builder) bool

	// Encode appends host text for the fragment text to out. It fails if the
	// text can not be stored in the host.
	Encode(decoded string, out *strings.Builder) bool

	// OffsetInHost maps offset in decoded text to offset in the host, or -1.
	OffsetInHost(offsetInDecoded int, rangeInHost Span) int

	IsOneLine() bool
}

// CreateLiteralTextEscaper returns escaper for the environment content. The
// content is passed to the fragment as is, text which would change where the
// environment ends can not be encoded.
func (e *Environment) CreateLiteralTextEscaper() LiteralTextEscaper {
	return &environmentEscaper{host: e}
}

type environmentEscaper struct {
	host *Environment
}

func (x *environmentEscaper) RelevantTextRange() Span {
	x.host.doc.mu.RLock()
	defer x.host.doc.mu.RUnlock()

	node := x.host.node
	if content := node.child(ContentKind); content != nil {
		return content.Span.Shift(-node.Span.Start)
	}

	end := x.host.begin().Span.End - node.Span.Start
	return Span{Start: end, End: end}
}

func (x *environmentEscaper) Decode(rangeInHost Span, out *strings.Builder) bool {
	x.host.doc.mu.RLock()
	defer x.host.doc.mu.RUnlock()

	text := x.host.doc.slice(x.host.node.Span)
	if rangeInHost.Start < 0 || rangeInHost.Start > rangeInHost.End || rangeInHost.End > len(text) {
		return false
	}

	out.WriteString(text[rangeInHost.Start:rangeInHost.End])
	return true
}

func (x *environmentEscaper) Encode(decoded string, out *strings.Builder) bool {
	x.host.doc.mu.RLock()
	defer x.host.doc.mu.RUnlock()

	if !x.encodable(decoded) {
		return false
	}

	out.WriteString(decoded)
	return true
}

func (x *environmentEscaper) OffsetInHost(offsetInDecoded int, rangeInHost Span) int {
	offset := rangeInHost.Start + offsetInDecoded
	if offsetInDecoded < 0 || offset > rangeInHost.End {
		return -1
	}

	return offset
}

func (x *environmentEscaper) IsOneLine() bool {
	return false
}

// encodable puts text between the markers of the host and parses it where the
// host is. Text fits when the markers still pair up and the text is all
// content: it is not taken as parameters of \begin and does not end the host
// early, by \end or by a comment or math running over the closing marker.
func (x *environmentEscaper) encodable(text string) bool {
	if !x.host.attached() {
		return false
	}

	node := x.host.node

	begin := x.host.doc.slice(x.host.begin().Span)
	end := "\\end{" + node.Data + "}"
	if marker := node.child(EndKind); marker != nil {
		end = x.host.doc.slice(marker.Span)
	}

	parsed, _, err := standalone(begin+text+end, enclosing(node))
	if err != nil {
		return false
	}

	if parsed.child(BeginKind).Span.End != len(begin) {
		return false
	}

	return parsed.child(EndKind).Span.Start == len(begin)+len(text)
}
