package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader returns a reader that yields r decoded to UTF-8.
//
// contentType is an optional HTTP Content-Type value. Resolution order:
//  1. charset parameter of contentType, when it names a known encoding
//  2. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  3. valid UTF-8 is returned as-is
//  4. chardet heuristics
//  5. Windows-1252
func NewUTF8Reader(r io.Reader, contentType string) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if enc, ok := declared(contentType); ok {
		if enc == unicode.UTF8 {
			_ = discardBOM(br, buf)
			return br, nil
		}

		return transform.NewReader(br, enc.NewDecoder()), nil
	}

	if discardBOM(br, buf) {
		return br, nil
	}

	if bytes.HasPrefix(buf, bomUTF16LE) {
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if bytes.HasPrefix(buf, bomUTF16BE) {
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if validUTF8Prefix(buf) {
		return br, nil
	}

	return transform.NewReader(br, sniff(buf).NewDecoder()), nil
}

// ReadAll decodes the whole body to UTF-8.
func ReadAll(r io.Reader, contentType string) ([]byte, error) {
	utf8r, err := NewUTF8Reader(r, contentType)
	if err != nil {
		return nil, err
	}

	b, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	return b, nil
}

func declared(contentType string) (encoding.Encoding, bool) {
	if contentType == "" {
		return nil, false
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}

	name := strings.TrimSpace(params["charset"])
	if name == "" {
		return nil, false
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, false
	}

	return enc, true
}

func discardBOM(br *bufio.Reader, buf []byte) bool {
	if !bytes.HasPrefix(buf, bomUTF8) {
		return false
	}

	_, _ = br.Discard(len(bomUTF8))

	return true
}

// validUTF8Prefix tolerates a rune cut in half at the end of the peek window.
func validUTF8Prefix(buf []byte) bool {
	if utf8.Valid(buf) {
		return true
	}

	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.Valid(buf[:len(buf)-i]) && !utf8.FullRune(buf[len(buf)-i:]) {
			return true
		}
	}

	return false
}

func sniff(buf []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		switch result.Charset {
		case "ISO-8859-1", "windows-1252":
			return charmap.Windows1252
		case "ISO-8859-9":
			return charmap.ISO8859_9
		case "ISO-8859-15":
			return charmap.ISO8859_15
		}
	}

	return charmap.Windows1252
}
