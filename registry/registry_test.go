package registry

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minios-linux/transkit/model"
)

// pair is the (qualified key, text) view two documents are compared by.
type pair struct{ Key, Text string }

func pairs(units []model.TranslationUnit) []pair {
	out := make([]pair, len(units))
	for i, u := range units {
		out[i] = pair{u.QualifiedKey(), u.Text()}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var sampleUnits = []model.TranslationUnit{
	{Key: "greeting", SourceText: "Hello, \"world\" & <you>", Description: "Start page"},
	{Key: "file", Namespace: "menu", SourceText: "File", TargetText: "Fichier"},
	{Key: "multi", SourceText: "Line one\nline two\ttab"},
	{Key: "path", Namespace: "misc", SourceText: `C:\temp 50% done; 'quoted' @home`},
	{Key: "emoji", SourceText: "Grüße 😀 ✓"},
	{Key: "count:one", SourceText: "%d file"},
	{Key: "count:other", SourceText: "%d files"},
}

func TestRoundTrip_AllFormats(t *testing.T) {
	r := Default()
	for _, format := range model.Formats() {
		t.Run(string(format), func(t *testing.T) {
			data, err := r.Export(format, sampleUnits, "en", "fr")
			require.NoError(t, err)

			doc, err := r.Parse(format, data)
			require.NoError(t, err)
			require.Empty(t, doc.Warnings)
			require.Equal(t, format, doc.Format)
			require.Equal(t, pairs(sampleUnits), pairs(doc.Units))
		})
	}
}

func TestRoundTrip_ControlCharacters(t *testing.T) {
	// XML 1.0 cannot carry U+000B even as a reference, so the XML formats
	// other than Android write U+FFFD in its place.
	replaced := map[model.FormatID]bool{
		model.FormatXLIFF:       true,
		model.FormatXLIFF2:      true,
		model.FormatStringsDict: true,
		model.FormatRESX:        true,
	}
	units := []model.TranslationUnit{{Key: "k", SourceText: "a\x0bb", Description: "note\x0c"}}
	r := Default()
	for _, format := range model.Formats() {
		t.Run(string(format), func(t *testing.T) {
			data, err := r.Export(format, units, "en", "fr")
			require.NoError(t, err)

			doc, err := r.Parse(format, data)
			require.NoError(t, err)
			require.Len(t, doc.Units, 1)
			want := "a\x0bb"
			if replaced[format] {
				want = "a\ufffdb"
			}
			require.Equal(t, want, doc.Units[0].Text())
		})
	}
}

func TestRoundTrip_EmptyText(t *testing.T) {
	units := []model.TranslationUnit{{Key: "blank"}}

	data, err := Export(model.FormatGettext, units, "en", "fr")
	require.NoError(t, err)
	doc, err := Parse(model.FormatGettext, data)
	require.NoError(t, err)
	require.Len(t, doc.Units, 1)
	require.Equal(t, "blank", doc.Units[0].Text())

	data, err = Export(model.FormatCSV, units, "en", "fr")
	require.NoError(t, err)
	doc, err = Parse(model.FormatCSV, data)
	require.NoError(t, err)
	require.Empty(t, doc.Units)
	require.Len(t, doc.Warnings, 1)
	require.Equal(t, "blank", doc.Warnings[0].Key)
}

func TestDefault_RegistersEveryFormat(t *testing.T) {
	require.Equal(t, model.Formats(), Default().Formats())
	for _, f := range model.Formats() {
		c, ok := Default().Get(f)
		require.True(t, ok, f)
		require.Equal(t, f, c.Format())
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse("docx", []byte("{}"))
	require.ErrorIs(t, err, model.ErrUnsupportedFormat)

	var ue *model.UnsupportedFormatError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "docx", ue.Format)

	_, err = Export("docx", sampleUnits, "en", "fr")
	require.ErrorIs(t, err, model.ErrUnsupportedFormat)
}

func TestParse_MalformedIsParseError(t *testing.T) {
	malformed := map[model.FormatID]string{
		model.FormatJSON:        `{"default": {"a": }`,
		model.FormatCSV:         "Key,Value\n\"a,b\n",
		model.FormatXLIFF:       "<xliff version=\"1.2\"><file>",
		model.FormatXLIFF2:      "<xliff version=\"2.0\"><file",
		model.FormatGettext:     "msgid \"a\"\nmsgstr \"b\nbogus",
		model.FormatStrings:     `"a" = "unterminated`,
		model.FormatStringsDict: "<plist><dict><key>a</key>",
		model.FormatARB:         `{"a": "b",}`,
		model.FormatAndroid:     "<resources><string name=\"a\">b</resources>",
		model.FormatRESX:        "<root><data name=\"a\">",
		model.FormatYAML:        "en:\n\ta: b\n",
	}
	for format, input := range malformed {
		_, err := Parse(format, []byte(input))
		var pe *model.ParseError
		require.Truef(t, errors.As(err, &pe), "%s: err = %v", format, err)
		require.Equal(t, format, pe.Format)
	}
}

func TestParse_CSVPartialTolerance(t *testing.T) {
	data := []byte("Key,Value\nhello,Hello\nbye,\n")
	doc, err := Parse(model.FormatCSV, data)
	require.NoError(t, err)
	require.Len(t, doc.Units, 1)
	require.Equal(t, "hello", doc.Units[0].Key)
	require.Len(t, doc.Warnings, 1)
	require.Equal(t, "bye", doc.Warnings[0].Key)
}

func TestParse_FillsLanguagesAndNormalisesInput(t *testing.T) {
	// UTF-8 byte-order mark in front of a JSON document.
	data := append([]byte{0xEF, 0xBB, 0xBF}, `{"default": {"a": "b"}}`...)
	doc, err := Parse(model.FormatJSON, data)
	require.NoError(t, err)
	require.Equal(t, model.DefaultLanguage, doc.SourceLanguage)
	require.Equal(t, model.DefaultLanguage, doc.TargetLanguage)
	require.Len(t, doc.Units, 1)

	// UTF-16LE .strings as written by Xcode.
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range `"k" = "v";` {
		utf16 = append(utf16, byte(r), 0)
	}
	doc, err = Parse(model.FormatStrings, utf16)
	require.NoError(t, err)
	require.Equal(t, []pair{{"k", "v"}}, pairs(doc.Units))
}

func TestParse_XLIFFVersionIsReported(t *testing.T) {
	data, err := Export(model.FormatXLIFF2, sampleUnits[:1], "en", "de")
	require.NoError(t, err)

	doc, err := Parse(model.FormatXLIFF, data)
	require.NoError(t, err)
	require.Equal(t, model.FormatXLIFF2, doc.Format)
	require.Equal(t, "de", doc.TargetLanguage)
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]model.FormatID{
		"strings.xml":               model.FormatAndroid,
		"res/values-fr/strings.xml": model.FormatAndroid,
		"layout.xml":                model.FormatJSON,
		"app.resx":                  model.FormatRESX,
		"catalog.pot":               model.FormatGettext,
		"fr.PO":                     model.FormatGettext,
		"Localizable.strings":       model.FormatStrings,
		"Localizable.stringsdict":   model.FormatStringsDict,
		"app_fr.arb":                model.FormatARB,
		"config/locales/fr.yml":     model.FormatYAML,
		"fr.yaml":                   model.FormatYAML,
		"messages.XLF":              model.FormatXLIFF,
		"messages.xliff":            model.FormatXLIFF,
		"export.csv":                model.FormatCSV,
		"unknown.dat":               model.FormatJSON,
		"noext":                     model.FormatJSON,
	}
	for name, want := range cases {
		require.Equalf(t, want, DetectFormat(name), "DetectFormat(%q)", name)
	}
}

func TestDetectAndParse(t *testing.T) {
	doc, err := DetectAndParse("messages.po", []byte("msgctxt \"menu\"\nmsgid \"file\"\nmsgstr \"Fichier\"\n"))
	require.NoError(t, err)
	require.Equal(t, model.FormatGettext, doc.Format)
	require.Equal(t, []pair{{"menu::file", "Fichier"}}, pairs(doc.Units))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fr.yml")
	require.NoError(t, os.WriteFile(path, []byte("fr:\n  nav:\n    home: Accueil\n"), 0o644))

	doc, err := ParseFile(path, "")
	require.NoError(t, err)
	require.Equal(t, model.FormatYAML, doc.Format)
	require.Equal(t, "fr", doc.TargetLanguage)
	require.Equal(t, []pair{{"nav::home", "Accueil"}}, pairs(doc.Units))

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFormatID(t *testing.T) {
	cases := map[string]model.FormatID{
		"json":        model.FormatJSON,
		" YAML ":      model.FormatYAML,
		"yml":         model.FormatYAML,
		"po":          model.FormatGettext,
		".pot":        model.FormatGettext,
		"xlf":         model.FormatXLIFF,
		"xliff12":     model.FormatXLIFF,
		"xliff20":     model.FormatXLIFF2,
		"apple":       model.FormatStrings,
		"plist":       model.FormatStringsDict,
		"flutter":     model.FormatARB,
		"dotnet":      model.FormatRESX,
		"strings.xml": model.FormatAndroid,
	}
	for in, want := range cases {
		got, err := ParseFormatID(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormatID("docx")
	require.ErrorIs(t, err, model.ErrUnsupportedFormat)
}

func TestRegistry_CustomCodec(t *testing.T) {
	r := New()
	_, ok := r.Get(model.FormatJSON)
	require.False(t, ok)

	r.Register(NewCodec("upper",
		func(data []byte) (*model.Document, error) {
			doc := model.NewDocument("upper")
			doc.Add(model.TranslationUnit{Key: "raw", SourceText: string(data)})
			return doc, nil
		},
		func(units []model.TranslationUnit, _, _ string) []byte {
			return []byte(units[0].Text())
		}))
	require.Equal(t, []model.FormatID{"upper"}, r.Formats())

	out, err := r.Export("upper", []model.TranslationUnit{{Key: "a", SourceText: "x"}}, "", "")
	require.NoError(t, err)
	require.Equal(t, "x", string(out))

	doc, err := r.Parse("upper", []byte("y"))
	require.NoError(t, err)
	require.Equal(t, model.FormatID("upper"), doc.Format)
}
