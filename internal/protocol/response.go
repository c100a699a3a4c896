package protocol

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/beevik/etree"
)

const (
	statusAttr     = "status"
	statusTextAttr = "status_text"
)

// Response is one reply of the server together with the request that
// caused it. It is immutable once created and safe for concurrent reads.
type Response struct {
	request Request
	data    []byte

	rootOnce sync.Once
	root     *etree.Element
	rootErr  error

	headOnce   sync.Once
	name       string
	status     int
	hasStatus  bool
	statusText string
}

// NewResponse creates a response from the raw reply bytes. The response
// takes ownership of data.
func NewResponse(req Request, data []byte) *Response {
	return &Response{
		request: req,
		data:    data,
	}
}

// Data returns the raw reply bytes.
func (r *Response) Data() []byte {
	return r.data
}

// Request returns the request this response answers.
func (r *Response) Request() Request {
	return r.request
}

// String returns the raw reply as a string.
func (r *Response) String() string {
	return string(r.data)
}

// XML parses the reply and returns its root element. The document is
// parsed once; later calls return the same element or the same error.
func (r *Response) XML() (*etree.Element, error) {
	r.rootOnce.Do(func() {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(r.data); err != nil {
			r.rootErr = &ParseError{Chunk: r.data, Cause: err}
			return
		}
		root := doc.Root()
		if root == nil {
			r.rootErr = &ParseError{Chunk: r.data, Cause: errors.New("no root element")}
			return
		}
		r.root = root
	})
	return r.root, r.rootErr
}

// Decode unmarshals the reply into v using encoding/xml struct tags.
func (r *Response) Decode(v any) error {
	if err := xml.Unmarshal(r.data, v); err != nil {
		return &ParseError{Chunk: r.data, Cause: err}
	}
	return nil
}

// Name returns the tag of the root element, for example
// "get_tasks_response".
func (r *Response) Name() string {
	r.scanHead()
	return r.name
}

// StatusCode returns the integer value of the status attribute of the
// root element. ok is false when the attribute is missing or is not a
// decimal integer.
func (r *Response) StatusCode() (status int, ok bool) {
	r.scanHead()
	return r.status, r.hasStatus
}

// StatusText returns the status_text attribute of the root element.
func (r *Response) StatusText() string {
	r.scanHead()
	return r.statusText
}

// IsSuccess reports whether the status code lies in 200..299.
func (r *Response) IsSuccess() bool {
	status, ok := r.StatusCode()
	return ok && status >= 200 && status <= 299
}

// RaiseForStatus returns the response itself when it is successful and a
// *StatusError carrying it otherwise.
func (r *Response) RaiseForStatus() (*Response, error) {
	if r.IsSuccess() {
		return r, nil
	}
	return nil, &StatusError{Response: r}
}

// scanHead reads the attributes of the root start tag without building
// the tree.
func (r *Response) scanHead() {
	r.headOnce.Do(func() {
		dec := xml.NewDecoder(bytes.NewReader(r.data))
		for {
			tok, err := dec.RawToken()
			if err != nil {
				return
			}
			start, ok := tok.(xml.StartElement)
			if !ok {
				continue
			}
			r.name = start.Name.Local
			for _, attr := range start.Attr {
				if attr.Name.Space != "" {
					continue
				}
				switch attr.Name.Local {
				case statusAttr:
					if status, err := strconv.Atoi(strings.TrimSpace(attr.Value)); err == nil {
						r.status = status
						r.hasStatus = true
					}
				case statusTextAttr:
					r.statusText = attr.Value
				}
			}
			return
		}
	})
}
