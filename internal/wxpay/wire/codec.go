package wire

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ContentType is the media type the gateway speaks on both directions.
const ContentType = "application/xml"

// ErrMalformed reports a body that is not the gateway's XML dialect.
var ErrMalformed = errors.New("malformed_xml")

// Values is the flat field set exchanged with the gateway. Keys are the
// gateway's wire names; unknown fields are carried verbatim so new gateway
// fields survive a round trip.
type Values map[string]string

func (v Values) Get(key string) string {
	if v == nil {
		return ""
	}
	return v[key]
}

func (v Values) Set(key, value string) {
	v[key] = value
}

func (v Values) Has(key string) bool {
	if v == nil {
		return false
	}
	_, ok := v[key]
	return ok
}

// Clone returns an independent copy of the field set.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Decode parses a gateway document: an <xml> root whose children are leaf
// elements holding CDATA or plain text. Values are trimmed of surrounding
// whitespace. Anything that is not well-formed XML with an <xml> root fails
// with ErrMalformed.
func Decode(body []byte) (Values, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	values := Values{}
	sawRoot := false
	depth := 0
	var field string
	var text strings.Builder

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 1:
				if t.Name.Local != "xml" {
					return nil, fmt.Errorf("%w: unexpected root element %q", ErrMalformed, t.Name.Local)
				}
				sawRoot = true
			case 2:
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth == 2 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 && field != "" {
				values[field] = strings.TrimSpace(text.String())
				field = ""
			}
			depth--
		}
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: missing <xml> root element", ErrMalformed)
	}
	return values, nil
}

// Encode renders a field set as a gateway document with CDATA-wrapped values.
// Keys are emitted in byte order so output is deterministic.
func Encode(values Values) []byte {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("<xml>")
	for _, key := range keys {
		buf.WriteString("<")
		buf.WriteString(key)
		buf.WriteString("><![CDATA[")
		buf.WriteString(values[key])
		buf.WriteString("]]></")
		buf.WriteString(key)
		buf.WriteString(">")
	}
	buf.WriteString("</xml>")
	return buf.Bytes()
}

// SuccessAck is the fixed acknowledgement body the gateway expects once a
// notification has been accepted.
func SuccessAck() []byte {
	return Encode(Values{
		"return_code": "SUCCESS",
		"return_msg":  "OK",
	})
}

// FailureAck reports a non-accepted notification to the gateway.
func FailureAck(reason string) []byte {
	if strings.TrimSpace(reason) == "" {
		reason = "FAIL"
	}
	return Encode(Values{
		"return_code": "FAIL",
		"return_msg":  reason,
	})
}
