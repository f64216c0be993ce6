package latexenv

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Tokenizer splits LaTeX source into tokens without dropping any input, so
// that offsets of consecutive tokens always cover the source.
type Tokenizer struct {
	r      io.RuneScanner
	offset int
	back   []rune
	source strings.Builder
}

func NewTokenizer(r io.RuneScanner) *Tokenizer {
	return &Tokenizer{r: r}
}

// Offset returns the byte offset of the next unread rune.
func (l *Tokenizer) Offset() int {
	return l.offset
}

// Source returns the text read from the underlying reader so far.
func (l *Tokenizer) Source() string {
	return l.source.String()
}

func (l *Tokenizer) Token() (any, error) {
	char, err := l.read()
	if err != nil {
		return nil, err
	}

	switch char {
	case '{':
		return ParameterStart{}, nil
	case '}':
		return ParameterEnd{}, nil
	case '[':
		return OptionalStart{}, nil
	case ']':
		return OptionalEnd{}, nil
	case '%':
		return l.readLineComment()
	case '$':
		return l.readMath()
	case '\\':
		return l.readBackslash()
	default:
		l.unread(char)
		return l.readText()
	}
}

// Peek returns the next rune without consuming it.
func (l *Tokenizer) Peek() (rune, error) {
	r, err := l.read()
	if err != nil {
		return 0, err
	}

	l.unread(r)
	return r, nil
}

// Raw reads body of a verbatim-like environment until \end{name}, which is
// left unread, or until EOF.
func (l *Tokenizer) Raw(name string) (Text, error) {
	terminator := "\\end{" + name + "}"

	var body strings.Builder
	for {
		read, err := l.read()
		if err == io.EOF {
			return Text(body.String()), nil
		}

		if err != nil {
			return "", err
		}

		writeRune(&body, read)

		if read == '}' && strings.HasSuffix(body.String(), terminator) {
			l.unreadString(terminator)
			return Text(strings.TrimSuffix(body.String(), terminator)), nil
		}
	}
}

func (l *Tokenizer) read() (rune, error) {
	if n := len(l.back); n > 0 {
		r := l.back[n-1]
		l.back = l.back[:n-1]
		l.offset += runeLen(r)
		return r, nil
	}

	r, size, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}

	if r == utf8.RuneError && size == 1 {
		r = l.invalid()
	}

	writeRune(&l.source, r)
	l.offset += runeLen(r)
	return r, nil
}

// invalid re-reads a byte which is not valid UTF-8 and escapes it. Readers
// which can not be read byte by byte keep the replacement character.
func (l *Tokenizer) invalid() rune {
	br, ok := l.r.(io.ByteReader)
	if !ok || l.r.UnreadRune() != nil {
		return utf8.RuneError
	}

	b, err := br.ReadByte()
	if err != nil {
		return utf8.RuneError
	}

	return escapeBase + rune(b)
}

func (l *Tokenizer) unread(r rune) {
	l.back = append(l.back, r)
	l.offset -= runeLen(r)
}

func (l *Tokenizer) unreadRunes(runes []rune) {
	for i := len(runes) - 1; i >= 0; i-- {
		l.unread(runes[i])
	}
}

func (l *Tokenizer) unreadString(s string) {
	l.unreadRunes([]rune(s))
}

func (l *Tokenizer) readText() (any, error) {
	var runes []rune
	for {
		read, err := l.read()
		if err == io.EOF {
			return Text(str(runes)), nil
		}

		if err != nil {
			return nil, err
		}

		if isSpecial(read) {
			l.unread(read)
			return Text(str(runes)), nil
		}

		runes = append(runes, read)

		if read == '\n' {
			return Text(str(runes)), nil
		}
	}
}

// readLineComment reads one line comment after %, the line break is not part of the comment
func (l *Tokenizer) readLineComment() (any, error) {
	runes := []rune{'%'}
	for {
		read, err := l.read()
		if err == io.EOF {
			return Comment(str(runes)), nil
		}

		if err != nil {
			return nil, err
		}

		if read == '\n' {
			l.unread(read)
			return Comment(str(runes)), nil
		}

		runes = append(runes, read)
	}
}

func (l *Tokenizer) readMath() (any, error) {
	// we already entered math with one $, check if next one is $ too (ie. math block)
	read, err := l.read()
	if err == io.EOF {
		return Math{Delimiter: "$"}, nil
	}

	if err != nil {
		return nil, err
	}

	delimiter := "$"
	if read == '$' {
		delimiter = "$$"
	} else {
		l.unread(read)
	}

	isClosing := false // we found first closing $ for block and expecting one more

	var runes []rune
	for {
		read, err := l.read()
		if err == io.EOF {
			if isClosing {
				runes = append(runes, '$')
			}

			return Math{Delimiter: delimiter, Data: str(runes)}, nil
		}

		if err != nil {
			return nil, err
		}

		if read == '$' && (len(runes) == 0 || runes[len(runes)-1] != '\\') {
			if delimiter == "$" || isClosing {
				return Math{Delimiter: delimiter, Data: str(runes), Closed: true}, nil
			}

			isClosing = true
			continue
		}

		// previous rune was $, but this one is not, so let's add $ because it's not part of the closing sequence
		if isClosing {
			runes = append(runes, '$')
		}

		isClosing = false
		runes = append(runes, read)
	}
}

func (l *Tokenizer) readBackslash() (any, error) {
	r, err := l.read()
	if err == io.EOF {
		return Command("\\"), nil
	}

	if err != nil {
		return nil, err
	}

	// a letter means it's a named command \xyz
	if isLetter(r) {
		l.unread(r)
		return l.readCommand()
	}

	// one symbol command, \\ may be followed by a star
	if r == '\\' {
		star, err := l.star()
		if err != nil {
			return nil, err
		}

		if star {
			return Command("\\\\*"), nil
		}
	}

	return Command(str([]rune{'\\', r})), nil
}

func (l *Tokenizer) readCommand() (any, error) {
	runes := []rune{'\\'}
	for {
		read, err := l.read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		if isLetter(read) {
			runes = append(runes, read)
			continue
		}

		// command names may include * in the end (except for begin and end)
		if read == '*' && string(runes) != "\\begin" && string(runes) != "\\end" {
			runes = append(runes, read)
		} else {
			l.unread(read)
		}

		break
	}

	command := string(runes)

	switch command {
	case "\\verb", "\\verb*":
		return l.readVerb(command)
	case "\\begin":
		name, err := l.argument()
		if err != nil {
			return nil, err
		}

		return EnvironmentStart{Name: name}, nil
	case "\\end":
		name, err := l.argument()
		if err != nil {
			return nil, err
		}

		return EnvironmentEnd{Name: name}, nil
	default:
		return Command(command), nil
	}
}

// argument reads environment name in curly brackets after \begin or \end. If
// the name is missing or malformed, everything is unread and the name is empty.
func (l *Tokenizer) argument() (string, error) {
	var consumed []rune

	for {
		read, err := l.read()
		if err == io.EOF {
			l.unreadRunes(consumed)
			return "", nil
		}

		if err != nil {
			return "", err
		}

		consumed = append(consumed, read)

		if isWhitespace(read) {
			continue
		}

		if read != '{' {
			l.unreadRunes(consumed)
			return "", nil
		}

		break
	}

	var name []rune
	for {
		read, err := l.read()
		if err == io.EOF {
			l.unreadRunes(append(consumed, name...))
			return "", nil
		}

		if err != nil {
			return "", err
		}

		if read == '}' {
			return string(name), nil
		}

		if !isNameRune(read) {
			l.unread(read)
			l.unreadRunes(append(consumed, name...))
			return "", nil
		}

		name = append(name, read)
	}
}

func (l *Tokenizer) readVerb(command string) (any, error) {
	delimiter, err := l.read()
	if err == io.EOF {
		return Verb{Command: command}, nil
	}

	if err != nil {
		return nil, err
	}

	if isWhitespace(delimiter) || isLetter(delimiter) || delimiter == '*' {
		l.unread(delimiter)
		return Command(command), nil
	}

	var runes []rune
	for {
		read, err := l.read()
		if err == io.EOF {
			return Verb{Command: command, Delimiter: str([]rune{delimiter}), Data: str(runes)}, nil
		}

		if err != nil {
			return nil, err
		}

		if read == delimiter {
			return Verb{Command: command, Delimiter: str([]rune{delimiter}), Data: str(runes), Closed: true}, nil
		}

		// \verb can not span multiple lines
		if read == '\n' {
			l.unread(read)
			return Verb{Command: command, Delimiter: str([]rune{delimiter}), Data: str(runes)}, nil
		}

		runes = append(runes, read)
	}
}

// star reads following star symbol, if present
func (l *Tokenizer) star() (bool, error) {
	r, err := l.read()
	if err == io.EOF {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if r == '*' {
		return true, nil
	}

	l.unread(r)
	return false, nil
}

// isLetter returns true for a letter
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

// isNameRune returns true for symbols allowed in environment names
func isNameRune(r rune) bool {
	return isLetter(r) || '0' <= r && r <= '9' || r == '*' || r == '-' || r == '@' || r == '.'
}

// isSpecial returns true if a symbol has a special meaning and should interrupt text reading
func isSpecial(r rune) bool {
	switch r {
	case '$', '%', '{', '}', '\\', '[', ']':
		return true
	default:
		return false
	}
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\n', '\t', '\r':
		return true
	default:
		return false
	}
}

// Bytes which are not valid UTF-8 are kept as runes of the low surrogate
// range, which decoding never yields, and written back as they were.
const escapeBase = 0xDC00

func isEscaped(r rune) bool {
	return escapeBase+0x80 <= r && r <= escapeBase+0xFF
}

func runeLen(r rune) int {
	if isEscaped(r) {
		return 1
	}

	return utf8.RuneLen(r)
}

func writeRune(b *strings.Builder, r rune) {
	if isEscaped(r) {
		b.WriteByte(byte(r - escapeBase))
		return
	}

	b.WriteRune(r)
}

// str converts runes to a string restoring escaped bytes
func str(runes []rune) string {
	var b strings.Builder
	for _, r := range runes {
		writeRune(&b, r)
	}

	return b.String()
}
