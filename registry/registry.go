// Package registry maps format ids to codecs and is the single entry point
// for parsing and exporting translation files.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/minios-linux/transkit/android"
	"github.com/minios-linux/transkit/applestrings"
	"github.com/minios-linux/transkit/arbfile"
	"github.com/minios-linux/transkit/csvfile"
	"github.com/minios-linux/transkit/gettext"
	"github.com/minios-linux/transkit/jsonfile"
	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/resx"
	"github.com/minios-linux/transkit/textenc"
	"github.com/minios-linux/transkit/xliff"
	"github.com/minios-linux/transkit/yamlfile"
)

// Codec decodes and encodes one file format.
type Codec interface {
	Format() model.FormatID
	Decode(data []byte) (*model.Document, error)
	Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte
}

// DecodeFunc parses raw UTF-8 input.
type DecodeFunc func(data []byte) (*model.Document, error)

// EncodeFunc serialises units.
type EncodeFunc func(units []model.TranslationUnit, sourceLang, targetLang string) []byte

type funcCodec struct {
	id     model.FormatID
	decode DecodeFunc
	encode EncodeFunc
}

// NewCodec builds a Codec from a pair of functions.
func NewCodec(id model.FormatID, decode DecodeFunc, encode EncodeFunc) Codec {
	return funcCodec{id: id, decode: decode, encode: encode}
}

func (c funcCodec) Format() model.FormatID { return c.id }

func (c funcCodec) Decode(data []byte) (*model.Document, error) { return c.decode(data) }

func (c funcCodec) Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	return c.encode(units, sourceLang, targetLang)
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Registry holds codecs keyed by format id. Register is meant for setup;
// once populated a Registry is safe for concurrent Parse and Export calls.
type Registry struct {
	codecs map[model.FormatID]Codec
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{codecs: make(map[model.FormatID]Codec)}
}

// Register adds c, replacing any codec already registered for its format.
func (r *Registry) Register(c Codec) {
	r.codecs[c.Format()] = c
}

// Get returns the codec for format.
func (r *Registry) Get(format model.FormatID) (Codec, bool) {
	c, ok := r.codecs[format]
	return c, ok
}

// Formats returns the registered format ids, in the canonical order of
// model.Formats followed by any others sorted by name.
func (r *Registry) Formats() []model.FormatID {
	var out []model.FormatID
	known := make(map[model.FormatID]bool)
	for _, f := range model.Formats() {
		known[f] = true
		if _, ok := r.codecs[f]; ok {
			out = append(out, f)
		}
	}
	var extra []model.FormatID
	for f := range r.codecs {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func (r *Registry) codec(format model.FormatID) (Codec, error) {
	c, ok := r.codecs[format]
	if !ok {
		return nil, &model.UnsupportedFormatError{Format: string(format)}
	}
	return c, nil
}

// Parse decodes data as format. An unknown format fails with
// *model.UnsupportedFormatError before the input is looked at. The input is
// normalised to UTF-8 first; the returned document has its Format set and
// empty languages filled with model.DefaultLanguage.
func (r *Registry) Parse(format model.FormatID, data []byte) (*model.Document, error) {
	c, err := r.codec(format)
	if err != nil {
		return nil, err
	}
	data, err = textenc.Normalize(data)
	if err != nil {
		return nil, model.NewParseError(format, err)
	}
	doc, err := c.Decode(data)
	if err != nil {
		var pe *model.ParseError
		if errors.As(err, &pe) {
			pe.Format = format
		}
		return nil, err
	}
	// XLIFF decoders report the version they actually read.
	if doc.Format == "" || !isXLIFF(format) || !isXLIFF(doc.Format) {
		doc.Format = format
	}
	doc.SourceLanguage, doc.TargetLanguage = doc.Languages()
	return doc, nil
}

func isXLIFF(f model.FormatID) bool {
	return f == model.FormatXLIFF || f == model.FormatXLIFF2
}

// Export encodes units as format. The only error is an unsupported format.
func (r *Registry) Export(format model.FormatID, units []model.TranslationUnit, sourceLang, targetLang string) ([]byte, error) {
	c, err := r.codec(format)
	if err != nil {
		return nil, err
	}
	return c.Encode(units, sourceLang, targetLang), nil
}

// ParseFile reads path and parses it as format. An empty format is
// detected from the file name.
func (r *Registry) ParseFile(path string, format model.FormatID) (*model.Document, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	if _, err := r.codec(format); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := r.Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// DetectAndParse parses data using the format detected from filename.
func (r *Registry) DetectAndParse(filename string, data []byte) (*model.Document, error) {
	return r.Parse(DetectFormat(filename), data)
}

// ---------------------------------------------------------------------------
// Default registry
// ---------------------------------------------------------------------------

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry with every built-in codec.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := New()
		r.Register(NewCodec(model.FormatJSON, jsonfile.Decode, jsonfile.Encode))
		r.Register(NewCodec(model.FormatCSV, csvfile.Decode, csvfile.Encode))
		r.Register(NewCodec(model.FormatXLIFF, xliff.Decode, xliff.Encode))
		r.Register(NewCodec(model.FormatXLIFF2, xliff.Decode, xliff.EncodeV2))
		r.Register(NewCodec(model.FormatGettext, gettext.Decode, gettext.Encode))
		r.Register(NewCodec(model.FormatStrings, applestrings.Decode, applestrings.Encode))
		r.Register(NewCodec(model.FormatStringsDict, applestrings.DecodeDict, applestrings.EncodeDict))
		r.Register(NewCodec(model.FormatARB, arbfile.Decode, arbfile.Encode))
		r.Register(NewCodec(model.FormatAndroid, android.Decode, android.Encode))
		r.Register(NewCodec(model.FormatRESX, resx.Decode, resx.Encode))
		r.Register(NewCodec(model.FormatYAML, yamlfile.Decode, yamlfile.Encode))
		defaultRegistry = r
	})
	return defaultRegistry
}

// Parse decodes data with the default registry.
func Parse(format model.FormatID, data []byte) (*model.Document, error) {
	return Default().Parse(format, data)
}

// Export encodes units with the default registry.
func Export(format model.FormatID, units []model.TranslationUnit, sourceLang, targetLang string) ([]byte, error) {
	return Default().Export(format, units, sourceLang, targetLang)
}

// ParseFile reads and parses path with the default registry.
func ParseFile(path string, format model.FormatID) (*model.Document, error) {
	return Default().ParseFile(path, format)
}

// DetectAndParse parses data with the default registry, detecting the
// format from filename.
func DetectAndParse(filename string, data []byte) (*model.Document, error) {
	return Default().DetectAndParse(filename, data)
}

// ---------------------------------------------------------------------------
// Format detection
// ---------------------------------------------------------------------------

// DetectFormat guesses a format from a file name. Matching is
// case-insensitive and falls back to JSON. The result is advisory: the
// content is never inspected.
func DetectFormat(filename string) model.FormatID {
	base := strings.ToLower(filepath.Base(filename))
	switch filepath.Ext(base) {
	case ".po", ".pot":
		return model.FormatGettext
	case ".strings":
		return model.FormatStrings
	case ".stringsdict":
		return model.FormatStringsDict
	case ".arb":
		return model.FormatARB
	case ".xml":
		if strings.Contains(base, "strings") {
			return model.FormatAndroid
		}
	case ".resx":
		return model.FormatRESX
	case ".yaml", ".yml":
		return model.FormatYAML
	case ".xliff", ".xlf":
		return model.FormatXLIFF
	case ".csv":
		return model.FormatCSV
	}
	return model.FormatJSON
}

var formatAliases = map[string]model.FormatID{
	"po":          model.FormatGettext,
	"pot":         model.FormatGettext,
	"xlf":         model.FormatXLIFF,
	"xliff12":     model.FormatXLIFF,
	"xliff1":      model.FormatXLIFF,
	"xliff20":     model.FormatXLIFF2,
	"yml":         model.FormatYAML,
	"apple":       model.FormatStrings,
	"plist":       model.FormatStringsDict,
	"flutter":     model.FormatARB,
	"dotnet":      model.FormatRESX,
	"i18next":     model.FormatJSON,
	"rails":       model.FormatYAML,
	"xml":         model.FormatAndroid,
	"strings.xml": model.FormatAndroid,
}

// ParseFormatID resolves a format name or common alias, case-insensitively.
func ParseFormatID(s string) (model.FormatID, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, ".")
	if f := model.FormatID(name); f.Valid() {
		return f, nil
	}
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	return "", &model.UnsupportedFormatError{Format: s}
}
