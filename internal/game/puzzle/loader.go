package puzzle

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxImageBytes caps how much of a source image is read.
	DefaultMaxImageBytes = 20 << 20
	// DefaultMaxImagePixels caps the decoded raster, checked from the header
	// before any pixels are allocated.
	DefaultMaxImagePixels = 40_000_000
)

var (
	ErrImageLoad         = errors.New("failed to load image")
	ErrUnsupportedScheme = errors.New("unsupported image url scheme")
	ErrImageTooLarge     = errors.New("image exceeds size limit")
)

// ImageLoadError is returned when a source image cannot be fetched or decoded.
type ImageLoadError struct {
	URL string
	Err error
}

func (e *ImageLoadError) Error() string {
	u := e.URL
	if len(u) > 64 {
		u = u[:61] + "..."
	}
	return fmt.Sprintf("failed to load image %q: %v", u, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

func (e *ImageLoadError) Is(target error) bool { return target == ErrImageLoad }

// ImageLoader fetches and decodes a source image
type ImageLoader interface {
	Load(ctx context.Context, rawURL string) (image.Image, error)
}

// ObjectGetter is the subset of the S3 client used to read images
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads images from data URLs, http(s), s3://bucket/key and local files.
type Loader struct {
	httpClient *http.Client
	objects    ObjectGetter
	maxBytes   int64
	maxPixels  int64
}

type LoaderOption func(*Loader)

func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.httpClient = c }
}

func WithObjectStore(o ObjectGetter) LoaderOption {
	return func(l *Loader) { l.objects = o }
}

func WithMaxBytes(n int64) LoaderOption {
	return func(l *Loader) { l.maxBytes = n }
}

func WithMaxPixels(n int64) LoaderOption {
	return func(l *Loader) { l.maxPixels = n }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxBytes:   DefaultMaxImageBytes,
		maxPixels:  DefaultMaxImagePixels,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	data, err := l.read(ctx, rawURL)
	if err != nil {
		return nil, &ImageLoadError{URL: rawURL, Err: err}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageLoadError{URL: rawURL, Err: fmt.Errorf("failed to decode image: %w", err)}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > l.maxPixels {
		return nil, &ImageLoadError{URL: rawURL, Err: fmt.Errorf("%w: %dx%d pixels", ErrImageTooLarge, cfg.Width, cfg.Height)}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageLoadError{URL: rawURL, Err: fmt.Errorf("failed to decode image: %w", err)}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, &ImageLoadError{URL: rawURL, Err: errors.New("image has no pixels")}
	}
	return img, nil
}

func (l *Loader) read(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return l.decodeDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return l.readHTTP(ctx, u.String())
	case "s3":
		return l.readObject(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "file":
		return l.readFile(u.Path)
	case "":
		return l.readFile(rawURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *Loader) readHTTP(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image request failed with status %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) readObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if l.objects == nil {
		return nil, fmt.Errorf("%w: s3 (no object store configured)", ErrUnsupportedScheme)
	}

	out, err := l.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return l.readLimited(out.Body)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>
func (l *Loader) decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data url")
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		// DecodedLen may overcount padding by two bytes, so it only gates the
		// allocation and the decoded length is checked below.
		if int64(base64.StdEncoding.DecodedLen(len(payload))) > l.maxBytes+2 {
			return nil, ErrImageTooLarge
		}
		var err error
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
		}
	} else {
		if int64(len(payload)) > 3*l.maxBytes {
			return nil, ErrImageTooLarge
		}
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to unescape payload: %w", err)
		}
		data = []byte(s)
	}

	if int64(len(data)) > l.maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}
