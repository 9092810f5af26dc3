package webfont

import (
	"net/http"

	"github.com/npillmayer/webfont/internal/decompress"
	"github.com/npillmayer/webfont/ot"
)

// Option configures the loading of a font.
type Option func(*config)

type config struct {
	opts         ot.Options
	errorOnStyle bool
	client       *http.Client
}

func configure(options []Option) *config {
	conf := &config{
		opts: ot.Options{
			Decoders: ot.Decoders{
				GzipDecode:   decompress.Zlib,
				BrotliDecode: decompress.Brotli,
			},
		},
	}
	for _, option := range options {
		option(conf)
	}
	return conf
}

func (conf *config) fail(err error) error {
	if conf.opts.OnError != nil {
		conf.opts.OnError(err)
	}
	return err
}

// checkStyle checks the file extension of a font's path or URL. Unsupported
// formats are an error only if WithErrorOnStyle is set.
func (conf *config) checkStyle(path string) error {
	if _, err := CSSFormat(path, conf.errorOnStyle); err != nil {
		return conf.fail(err)
	}
	return nil
}

// WithStrict makes table length mismatches errors instead of warnings.
func WithStrict() Option {
	return func(conf *config) {
		conf.opts.Strict = true
	}
}

// WithDecoders replaces the default decompressors. A nil function leaves
// the respective default in place.
func WithDecoders(decoders ot.Decoders) Option {
	return func(conf *config) {
		if decoders.GzipDecode != nil {
			conf.opts.Decoders.GzipDecode = decoders.GzipDecode
		}
		if decoders.BrotliDecode != nil {
			conf.opts.Decoders.BrotliDecode = decoders.BrotliDecode
		}
	}
}

// WithoutDecoders removes the decompressors. Compressed WOFF tables and
// WOFF2 fonts cannot be decoded then.
func WithoutDecoders() Option {
	return func(conf *config) {
		conf.opts.Decoders = ot.Decoders{}
	}
}

// WithLegacyFixed selects the divisor 65356 for decoding Fixed values.
func WithLegacyFixed() Option {
	return func(conf *config) {
		conf.opts.LegacyFixed = true
	}
}

// WithErrorHandler sets a function to be called with every fatal error
// before it is returned.
func WithErrorHandler(handler func(error)) Option {
	return func(conf *config) {
		conf.opts.OnError = handler
	}
}

// WithErrorOnStyle makes loading a font with an unsupported file extension
// (e.g., *.eot) an error. Otherwise a warning is traced and loading proceeds.
func WithErrorOnStyle() Option {
	return func(conf *config) {
		conf.errorOnStyle = true
	}
}

// WithHTTPClient sets the client used by `Fetch`.
func WithHTTPClient(client *http.Client) Option {
	return func(conf *config) {
		conf.client = client
	}
}
