// Package encoding converts legacy-encoded asset text to UTF-8.
//
// OBJ and MTL files exported by older tools frequently carry object and
// material names in a regional code page; line-based readers decode the
// whole file up front so tokenization always works on UTF-8.
package encoding

import (
	"bytes"
	"fmt"
	"strings"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// UTF8 is the canonical name of the pass-through encoding.
const UTF8 = "utf-8"

// Lookup resolves an encoding by its WHATWG name or alias
// (for example "utf-8", "euc-kr", "shift_jis", "windows-1252").
// An empty name resolves to UTF-8.
func Lookup(name string) (xencoding.Encoding, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" || name == UTF8 || name == "utf8" {
		return xencoding.Nop, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	return enc, nil
}

// Decode converts data in the named encoding to UTF-8.
// A leading UTF-8 byte order mark is stripped.
func Decode(data []byte, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == xencoding.Nop {
		return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s text: %w", name, err)
	}
	return result, nil
}

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// Returns the original string if conversion fails.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToEUCKR converts a UTF-8 string to EUC-KR encoded bytes.
// Returns the original bytes if conversion fails.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
