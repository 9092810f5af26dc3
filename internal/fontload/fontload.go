package fontload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/image/font/sfnt"
)

// MaxFontSize is the maximum number of bytes read for a single font.
const MaxFontSize = 64 << 20

// Binary holds the raw bytes of a font together with where they came from.
type Binary struct {
	Name   string // file name, without directories
	Source string // file path or URL
	Data   []byte
}

// ReadFile loads a font binary from a file.
func ReadFile(fontfile string) (*Binary, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	return &Binary{Name: filepath.Base(fontfile), Source: fontfile, Data: bytez}, nil
}

// Fetch loads a font binary from a URL. If client is nil, http.DefaultClient
// is used.
func Fetch(ctx context.Context, client *http.Client, url string) (*Binary, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching font %s: %s", url, resp.Status)
	}
	bytez, err := io.ReadAll(io.LimitReader(resp.Body, MaxFontSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetching font %s: %w", url, err)
	}
	if len(bytez) > MaxFontSize {
		return nil, fmt.Errorf("fetching font %s: font exceeds %d bytes", url, MaxFontSize)
	}
	return &Binary{Name: path.Base(req.URL.Path), Source: url, Data: bytez}, nil
}

// Reference parses a TrueType or OpenType font with package
// golang.org/x/image/font/sfnt and returns it with its full name.
// Tools and tests use it to cross-check decoding results.
func Reference(fbytes []byte) (*sfnt.Font, string, error) {
	f, err := sfnt.Parse(fbytes)
	if err != nil {
		return nil, "", err
	}
	name, err := f.Name(nil, sfnt.NameIDFull)
	if err != nil {
		return f, "", nil
	}
	return f, name, nil
}
