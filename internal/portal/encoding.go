package portal

import (
	"fmt"
	"net/url"

	"golang.org/x/text/encoding/charmap"
)

// encodeLatin1 converts s to ISO-8859-1 bytes (returned as a string). Text
// outside that repertoire is rejected rather than transliterated.
func encodeLatin1(s string) (string, error) {
	return charmap.ISO8859_1.NewEncoder().String(s)
}

// encodeValues returns a copy of v with every key and value Latin-1 encoded.
// url.Values.Encode then percent-escapes the single-byte representation.
func encodeValues(v url.Values) (url.Values, error) {
	out := make(url.Values, len(v))
	for key, values := range v {
		for _, value := range values {
			ev, err := encodeLatin1(value)
			if err != nil {
				return nil, &Error{
					Kind:    KindEncoding,
					Message: fmt.Sprintf("field %s: %q is not representable in ISO-8859-1", key, value),
					Err:     err,
				}
			}
			out[key] = append(out[key], ev)
		}
	}
	return out, nil
}
