// Package media resolves image and audio references into inline payloads.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	defaultTimeout = 30 * time.Second
	// MaxSize bounds how much is read into memory for a single payload.
	MaxSize = 20 << 20
)

var (
	ErrUnsupportedScheme = errors.New("unsupported media uri scheme")
	ErrEmpty             = errors.New("media is empty")
	ErrTooLarge          = errors.New("media exceeds size limit")
	// ErrForbiddenDestination is returned by loaders limited to public
	// addresses when a download resolves anywhere else.
	ErrForbiddenDestination = errors.New("media destination is not a public address")
)

// Payload is binary content ready to be sent inline.
type Payload struct {
	MIMEType string
	// Data is the standard base64 encoding of the content.
	Data string
}

// FromBytes encodes b and sniffs its MIME type.
func FromBytes(b []byte) (Payload, error) {
	if len(b) == 0 {
		return Payload{}, ErrEmpty
	}

	if len(b) > MaxSize {
		return Payload{}, ErrTooLarge
	}

	return Payload{
		MIMEType: sniff(b),
		Data:     base64.StdEncoding.EncodeToString(b),
	}, nil
}

// sniff drops mimetype parameters such as "; charset=utf-8".
func sniff(b []byte) string {
	mt := mimetype.Detect(b).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}

	return mt
}

// Loader reads media from local files, HTTP(S) URLs and data URIs.
type Loader struct {
	client *http.Client
}

type Option func(*Loader)

func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithPublicDestinationsOnly refuses downloads whose connection would reach a
// loopback, private, link-local or unspecified address. The check runs on the
// resolved address of every dial, redirects included, and proxies are not used.
func WithPublicDestinationsOnly() Option {
	return func(l *Loader) {
		dialer := &net.Dialer{Timeout: 10 * time.Second, Control: publicOnly}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext

		l.client = &http.Client{Timeout: l.client.Timeout, Transport: transport}
	}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenDestination, address)
	}

	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenDestination, host)
	}

	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrForbiddenDestination, ip)
	}

	return nil
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{client: &http.Client{Timeout: defaultTimeout}}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the whole resource behind uri into memory.
func (l *Loader) Load(ctx context.Context, uri string) (Payload, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Payload{}, ErrEmpty
	}

	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare path, including Windows drive letters
		return readFile(uri)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return l.download(ctx, u.String())
	}

	return Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

func readFile(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return Payload{}, fmt.Errorf("opening media file: %w", err)
	}
	defer f.Close()

	b, err := readLimited(f)
	if err != nil {
		return Payload{}, fmt.Errorf("reading media file: %w", err)
	}

	return FromBytes(b)
}

func (l *Loader) download(ctx context.Context, u string) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("creating media request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("downloading media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("downloading media: unexpected status code %d", resp.StatusCode)
	}

	b, err := readLimited(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("reading media response: %w", err)
	}

	return FromBytes(b)
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}

	if len(b) > MaxSize {
		return nil, ErrTooLarge
	}

	return b, nil
}

// decodeDataURI handles data:<mime>[;base64],<data>. A declared MIME type is
// kept; otherwise the content is sniffed.
func decodeDataURI(uri string) (Payload, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return Payload{}, fmt.Errorf("malformed data uri")
	}

	isBase64 := strings.HasSuffix(meta, ";base64")
	declared := strings.TrimSuffix(meta, ";base64")
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}

	var raw []byte

	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return Payload{}, fmt.Errorf("decoding data uri: %w", err)
		}

		raw = b
	} else {
		s, err := url.PathUnescape(data)
		if err != nil {
			return Payload{}, fmt.Errorf("decoding data uri: %w", err)
		}

		raw = []byte(s)
	}

	p, err := FromBytes(raw)
	if err != nil {
		return Payload{}, err
	}

	if declared != "" {
		p.MIMEType = declared
	}

	return p, nil
}
