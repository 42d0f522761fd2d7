package file

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// maxUnitBytes is the longest byte sequence any supported encoding uses for a
// single character (a UTF-16 surrogate pair or a 4-byte UTF-8 sequence).
const maxUnitBytes = 4

// codec converts between a text encoding and Go strings one character at a time.
// Decoding is strict: bytes that do not form a valid character are an error,
// never a replacement character.
type codec struct {
	name string
	enc  encoding.Encoding
	dec  *encoding.Decoder
	// replacement holds U+FFFD in the target encoding, or nil if the
	// encoding cannot represent it.
	replacement []byte
}

// newCodec looks up an IANA encoding name. Encodings whose byte order is
// decided by sniffing a byte-order mark are rejected.
func newCodec(name string) (*codec, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errutil.Wrap(err, errutil.Encoding, "unknown encoding "+quote(name))
	}
	if enc == nil {
		return nil, errutil.New(errutil.Encoding, "unsupported encoding "+quote(name))
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	switch strings.ToUpper(canonical) {
	case "UTF-16", "UTF-32":
		return nil, errutil.New(errutil.Encoding, "encoding "+quote(name)+" needs an explicit byte order")
	}

	c := &codec{name: canonical, enc: enc, dec: enc.NewDecoder()}
	if rep, err := enc.NewEncoder().Bytes([]byte(string(utf8.RuneError))); err == nil {
		c.replacement = rep
	}
	return c, nil
}

func quote(s string) string {
	return `"` + s + `"`
}

// decodeRune decodes the first character of p. atEOF reports that p holds
// everything left in the stream. It returns io.EOF when p is empty.
func (c *codec) decodeRune(p []byte, atEOF bool) (rune, int, error) {
	if len(p) == 0 {
		return 0, 0, io.EOF
	}
	var dst [utf8.UTFMax * 2]byte
	limit := min(len(p), maxUnitBytes)
	for k := 1; k <= limit; k++ {
		c.dec.Reset()
		nDst, nSrc, err := c.dec.Transform(dst[:], p[:k], atEOF && k == len(p))
		if err == transform.ErrShortSrc {
			continue
		}
		if err != nil {
			return 0, 0, errutil.Wrap(err, errutil.Encoding, "cannot decode "+c.name)
		}
		if nDst == 0 {
			continue
		}
		r, size := utf8.DecodeRune(dst[:nDst])
		if size != nDst || nSrc == 0 {
			return 0, 0, errutil.Newf(errutil.Encoding, "ambiguous %s sequence % x", c.name, p[:k])
		}
		if r == utf8.RuneError && !bytes.Equal(p[:nSrc], c.replacement) {
			return 0, 0, errutil.Newf(errutil.Encoding, "invalid %s sequence % x", c.name, p[:nSrc])
		}
		return r, nSrc, nil
	}
	return 0, 0, errutil.Newf(errutil.Encoding, "truncated %s sequence % x", c.name, p[:limit])
}

// encode converts s to the target encoding.
func (c *codec) encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errutil.New(errutil.Encoding, "string is not valid UTF-8")
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errutil.Wrap(err, errutil.Encoding, "cannot encode as "+c.name)
	}
	return out, nil
}
