package protocol

import (
	"bytes"
	"encoding/xml"
)

// Request is one outgoing XML command. Bytes must render exactly one
// complete top-level element encoded as UTF-8. A Request must not change
// once it has been passed to Connection.Send.
type Request interface {
	Bytes() []byte
	String() string
}

// RawRequest is a Request made of bytes that are already serialized.
type RawRequest []byte

// Bytes returns the request payload.
func (r RawRequest) Bytes() []byte {
	return []byte(r)
}

// String returns the request payload as a string.
func (r RawRequest) String() string {
	return string(r)
}

// CommandName returns the tag of the top-level element of a request, for
// example "get_tasks". Requests that implement Command() string are asked
// directly. It returns an empty string when no element can be found.
func CommandName(req Request) string {
	if req == nil {
		return ""
	}
	if named, ok := req.(interface{ Command() string }); ok {
		return named.Command()
	}
	return rootName(req.Bytes())
}

// rootName returns the local name of the first start element in data.
func rootName(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return ""
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local
		}
	}
}
