package protocol

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// boundaryDetector reports when one complete top-level element has been
// fed. It does not build a tree: it only follows start and end events.
//
// Every feed tokenizes the bytes not yet consumed. A token cut off by the
// end of the available input is retried once its terminator has arrived,
// everything before it is dropped. The detector therefore holds at most one
// partial token, however large the reply grows, and tokenizes each byte a
// bounded number of times.
type boundaryDetector struct {
	pending  []byte
	consumed int64
	open     []xml.Name
	firstTag *xml.Name
	reached  bool

	partial partialToken
	// decoded counts the bytes handed to the tokenizer.
	decoded int64
}

// partialToken follows the search for the end of the token at the head of
// pending, so a large CDATA section, comment or tag is scanned only once.
type partialToken struct {
	terminator string // end of a CDATA section, comment or PI
	tag        bool   // start or end tag, ended by '>' outside quotes
	quote      byte // open attribute quote inside a tag
	scanned    int  // bytes of pending already searched
}

func (t *partialToken) known() bool {
	return t.tag || t.terminator != ""
}

// complete searches the bytes appended since the last call for the end of
// the token.
func (t *partialToken) complete(pending []byte) bool {
	if !t.tag {
		from := max(t.scanned-len(t.terminator)+1, 0)
		if bytes.Contains(pending[from:], []byte(t.terminator)) {
			return true
		}
		t.scanned = len(pending)
		return false
	}

	for i := t.scanned; i < len(pending); i++ {
		switch c := pending[i]; {
		case c == '<':
			// '<' cannot occur in a tag; let the tokenizer report it.
			return true
		case t.quote != 0:
			if c == t.quote {
				t.quote = 0
			}
		case c == '"' || c == '\'':
			t.quote = c
		case c == '>':
			return true
		}
	}
	t.scanned = len(pending)
	return false
}

// classify identifies the truncated token starting at rest. Tokens too
// short to tell apart are left unknown and simply retokenized.
func classify(rest []byte) partialToken {
	for _, m := range []struct{ open, close string }{
		{"<![CDATA[", "]]>"},
		{"<!--", "-->"},
		{"<?", "?>"},
	} {
		if bytes.HasPrefix(rest, []byte(m.open)) {
			return partialToken{terminator: m.close, scanned: len(m.open)}
		}
	}
	if len(rest) >= 2 && rest[0] == '<' && isTagStart(rest[1]) {
		return partialToken{tag: true, scanned: 1}
	}
	return partialToken{}
}

func isTagStart(c byte) bool {
	return c == '/' || c == '_' || c == ':' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c >= utf8.RuneSelf
}

func newBoundaryDetector() *boundaryDetector {
	return &boundaryDetector{}
}

// feed pushes p into the parser and drains every event it completes.
// Bytes following the boundary are not examined.
func (d *boundaryDetector) feed(p []byte) error {
	if d.reached || len(p) == 0 {
		return nil
	}
	d.pending = append(d.pending, p...)
	if d.partial.known() && !d.partial.complete(d.pending) {
		return nil
	}

	// A multi-byte rune split across chunks would be reported as invalid
	// UTF-8, so an incomplete trailing sequence waits for the next chunk.
	window := d.pending[:len(d.pending)-incompleteRuneTail(d.pending)]

	dec := xml.NewDecoder(bytes.NewReader(window))
	dec.Strict = true
	d.decoded += int64(len(window))

	var committed int64
	for !d.reached {
		tok, err := dec.RawToken()
		if err != nil {
			if isTruncated(err) {
				break
			}
			return &ParseError{Chunk: p, Offset: d.consumed + dec.InputOffset(), Cause: err}
		}
		if err := d.handle(tok); err != nil {
			return &ParseError{Chunk: p, Offset: d.consumed + dec.InputOffset(), Cause: err}
		}
		committed = dec.InputOffset()
	}

	d.consumed += committed
	n := copy(d.pending, d.pending[committed:])
	d.pending = d.pending[:n]
	if d.reached {
		d.pending = nil
		return nil
	}
	d.partial = classify(d.pending)
	if d.partial.known() {
		d.partial.complete(d.pending)
	}
	return nil
}

// endReached reports whether the first opened element has been closed.
func (d *boundaryDetector) endReached() bool {
	return d.reached
}

func (d *boundaryDetector) handle(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		if d.firstTag == nil {
			name := t.Name
			d.firstTag = &name
		}
		d.open = append(d.open, t.Name)
	case xml.EndElement:
		if len(d.open) == 0 {
			return fmt.Errorf("unexpected end element </%s>", qualifiedName(t.Name))
		}
		top := d.open[len(d.open)-1]
		if top != t.Name {
			return fmt.Errorf("element <%s> closed by </%s>", qualifiedName(top), qualifiedName(t.Name))
		}
		d.open = d.open[:len(d.open)-1]
		if len(d.open) == 0 && t.Name == *d.firstTag {
			d.reached = true
		}
	case xml.CharData:
		if d.firstTag == nil && len(bytes.TrimSpace(t)) > 0 {
			return errors.New("character data before root element")
		}
	}
	return nil
}

// isTruncated tells an input that merely ends too early apart from one
// that is malformed.
func isTruncated(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return strings.HasPrefix(syntaxErr.Msg, "unexpected EOF")
	}
	return false
}

// incompleteRuneTail returns the length of a trailing UTF-8 sequence that
// has been started but not finished.
func incompleteRuneTail(p []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(p); i++ {
		b := p[len(p)-i]
		if utf8.RuneStart(b) {
			if b >= utf8.RuneSelf && !utf8.FullRune(p[len(p)-i:]) {
				return i
			}
			return 0
		}
	}
	return 0
}

func qualifiedName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}
