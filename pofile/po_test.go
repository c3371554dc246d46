package pofile

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// findEntry returns the live entry with the given context and msgid.
func findEntry(f *File, msgctxt, msgid string) *Entry {
	for _, e := range f.Entries {
		if e.MsgCtxt == msgctxt && e.MsgID == msgid && !e.Obsolete {
			return e
		}
	}
	return nil
}

func TestParseWriteRoundTripAndHeaderFields(t *testing.T) {
	input := `msgid ""
msgstr ""
"Project-Id-Version: transkit 1.0\n"
"Language: ru\n"

#. extracted comment
#: app.go:12
msgid "hello"
msgstr "privet"

#, fuzzy
#| msgid "old count"
msgid "count"
msgid_plural "counts"
msgstr[0] "odin"
msgstr[1] "mnogo"
`

	f, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if got := f.HeaderField("language"); got != "ru" {
		t.Fatalf("HeaderField(language) = %q, want ru", got)
	}
	if got := f.HeaderField("Plural-Forms"); got != "" {
		t.Fatalf("Plural-Forms = %q, want empty", got)
	}

	if len(f.Entries) != 2 {
		t.Fatalf("entries len = %d, want 2", len(f.Entries))
	}
	plural := findEntry(f, "", "count")
	if plural == nil {
		t.Fatal("count entry not found")
	}
	if !plural.IsFuzzy() {
		t.Fatal("count entry should be fuzzy")
	}
	if plural.PreviousMsgID != "old count" {
		t.Fatalf("PreviousMsgID = %q, want old count", plural.PreviousMsgID)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	round, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse roundtrip error: %v", err)
	}

	if round.HeaderField("Language") != "ru" {
		t.Fatalf("roundtrip Language = %q, want ru", round.HeaderField("Language"))
	}
	if got := findEntry(round, "", "hello"); got == nil || got.MsgStr != "privet" || !reflect.DeepEqual(got.References, []string{"app.go:12"}) {
		t.Fatalf("roundtrip hello entry mismatch: %#v", got)
	}
	roundPlural := findEntry(round, "", "count")
	if roundPlural == nil || !roundPlural.IsFuzzy() {
		t.Fatalf("roundtrip plural entry mismatch: %#v", roundPlural)
	}
	if !reflect.DeepEqual(roundPlural.MsgStrPlural, map[int]string{0: "odin", 1: "mnogo"}) {
		t.Fatalf("roundtrip plural forms = %v", roundPlural.MsgStrPlural)
	}
}

func TestIsFuzzy(t *testing.T) {
	cases := []struct {
		flags []string
		want  bool
	}{
		{nil, false},
		{[]string{"fuzzy"}, true},
		{[]string{"c-format", "fuzzy"}, true},
		{[]string{"no-fuzzy-ish", "python-format"}, false},
	}
	for _, tc := range cases {
		e := Entry{MsgID: "a", Flags: tc.flags}
		if got := e.IsFuzzy(); got != tc.want {
			t.Errorf("IsFuzzy(%q) = %v, want %v", tc.flags, got, tc.want)
		}
	}
}

func TestTranslation_PluralFallback(t *testing.T) {
	cases := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"singular", Entry{MsgID: "a", MsgStr: "A"}, "A"},
		{"form zero", Entry{MsgID: "a", MsgIDPlural: "as", MsgStrPlural: map[int]string{0: "one", 1: "many"}}, "one"},
		{"first non-empty", Entry{MsgID: "a", MsgIDPlural: "as", MsgStrPlural: map[int]string{0: "", 2: "two", 1: "many"}}, "many"},
		{"all empty", Entry{MsgID: "a", MsgIDPlural: "as", MsgStrPlural: map[int]string{0: ""}}, ""},
	}
	for _, tc := range cases {
		if got := tc.entry.Translation(); got != tc.want {
			t.Errorf("%s: Translation() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParse_ContextObsoleteAndLines(t *testing.T) {
	input := `msgid ""
msgstr "Language: fr\n"

msgctxt "menu"
msgid "file"
msgstr "Fichier"
msgctxt "menu"
msgid "edit"
msgstr ""
"Mod"
"ifier"

#~ msgid "gone"
#~ msgstr "parti"
`
	f, err := ParseBytes([]byte(input))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if len(f.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(f.Entries))
	}
	file := findEntry(f, "menu", "file")
	if file == nil || file.MsgStr != "Fichier" || file.Line != 4 {
		t.Fatalf("menu/file = %#v", file)
	}
	edit := findEntry(f, "menu", "edit")
	if edit == nil || edit.MsgStr != "Modifier" || edit.Line != 7 {
		t.Fatalf("menu/edit = %#v", edit)
	}
	if !f.Entries[2].Obsolete || f.Entries[2].MsgStr != "parti" {
		t.Fatalf("obsolete entry = %#v", f.Entries[2])
	}
	if findEntry(f, "", "gone") != nil {
		t.Error("findEntry should ignore obsolete entries")
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		line  int
	}{
		{"unknown keyword", "msgid \"a\"\nmsgfoo \"b\"\n", 2},
		{"unterminated string", "msgid \"a\"\nmsgstr \"b\n", 2},
		{"escaped closing quote", "msgid \"a\\\"\n", 1},
		{"bad plural index", "msgid \"a\"\nmsgid_plural \"as\"\nmsgstr[x] \"b\"\n", 3},
		{"orphan continuation", "\"dangling\"\n", 1},
	}
	for _, tc := range cases {
		_, err := ParseBytes([]byte(tc.input))
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%s: err = %v, want *SyntaxError", tc.name, err)
			continue
		}
		if se.Line != tc.line {
			t.Errorf("%s: line = %d, want %d", tc.name, se.Line, tc.line)
		}
	}
}

func TestWrite_EscapesAndComments(t *testing.T) {
	f := NewFile()
	f.Header = MakeHeader(HeaderOptions{Project: "demo", Language: "ru", Now: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)})
	f.Entries = append(f.Entries, &Entry{
		ExtractedComments: []string{"line one\nline two"},
		MsgID:             "say \"hi\"\now",
		MsgStr:            "tab\there",
	})
	out := string(f.Marshal())
	for _, want := range []string{
		`"POT-Creation-Date: 2024-01-02 03:04+0000\n"`,
		`"Plural-Forms: nplurals=3;`,
		"#. line one\n#. line two\n",
		`msgid ""` + "\n" + `"say \"hi\"\n"` + "\n" + `"ow"`,
		`msgstr "tab\there"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	round, err := ParseBytes([]byte(out))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	e := round.Entries[0]
	if e.MsgID != "say \"hi\"\now" || e.MsgStr != "tab\there" {
		t.Fatalf("round trip = %q / %q", e.MsgID, e.MsgStr)
	}
	if e.ExtractedComments[0] != "line one" || e.ExtractedComments[1] != "line two" {
		t.Fatalf("comments = %q", e.ExtractedComments)
	}
	if round.HeaderField("Language") != "ru" {
		t.Fatalf("Language = %q", round.HeaderField("Language"))
	}
}

func TestPluralFormsForLang(t *testing.T) {
	pluralCases := []struct {
		lang string
		want string
	}{
		{lang: "ru", want: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"},
		{lang: "pt-BR", want: "nplurals=2; plural=(n > 1);"},
		{lang: "ja", want: "nplurals=1; plural=0;"},
		{lang: "zz", want: "nplurals=2; plural=(n != 1);"},
		{lang: "", want: "nplurals=2; plural=(n != 1);"},
	}
	for _, tc := range pluralCases {
		if got := PluralFormsForLang(tc.lang); got != tc.want {
			t.Fatalf("PluralFormsForLang(%q) = %q, want %q", tc.lang, got, tc.want)
		}
	}
}
