// Package pofile implements reading and writing of PO/POT files
// following the GNU gettext PO format.
//
// It is the grammar layer only: entries, comments, flags, contexts and plural
// forms exactly as they appear in the file. Mapping entries onto translation
// units is done by the gettext package.
package pofile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/minios-linux/transkit/escape"
)

// Entry represents a single translatable message in a PO file.
type Entry struct {
	// TranslatorComments are lines starting with "# " (translator comments).
	TranslatorComments []string
	// ExtractedComments are lines starting with "#." (extracted/automatic comments).
	ExtractedComments []string
	// References are source code locations, lines starting with "#:".
	References []string
	// Flags are format flags, lines starting with "#,".
	Flags []string
	// PreviousMsgID stores the previous msgid for fuzzy entries, lines starting with "#|".
	PreviousMsgID string

	// MsgCtxt is the message context (msgctxt).
	MsgCtxt string
	// MsgID is the untranslated string.
	MsgID string
	// MsgIDPlural is the untranslated plural string.
	MsgIDPlural string
	// MsgStr is the translated string (singular or the only form).
	MsgStr string
	// MsgStrPlural maps plural form index to translated string.
	MsgStrPlural map[int]string

	// Obsolete marks entries prefixed with "#~".
	Obsolete bool

	// Line is the 1-based line of the entry's first line in the parsed
	// input, 0 for entries built in code.
	Line int
}

// IsFuzzy reports whether the entry carries the fuzzy flag, marking its
// msgstr as a draft that still needs review.
func (e *Entry) IsFuzzy() bool {
	for _, f := range e.Flags {
		if f == "fuzzy" {
			return true
		}
	}
	return false
}

// Translation returns msgstr, or for plural entries msgstr[0] and then the
// first non-empty plural form in index order.
func (e *Entry) Translation() string {
	if e.MsgIDPlural == "" && len(e.MsgStrPlural) == 0 {
		return e.MsgStr
	}
	if v := e.MsgStrPlural[0]; v != "" {
		return v
	}
	indices := make([]int, 0, len(e.MsgStrPlural))
	for idx := range e.MsgStrPlural {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		if v := e.MsgStrPlural[idx]; v != "" {
			return v
		}
	}
	return e.MsgStr
}

// File represents a parsed PO/POT file.
type File struct {
	// Header is the metadata entry (msgid "").
	Header *Entry
	// Entries are the translatable message entries.
	Entries []*Entry
}

// NewFile creates a new empty PO file.
func NewFile() *File {
	return &File{
		Header: &Entry{
			MsgID:  "",
			MsgStr: "",
		},
		Entries: make([]*Entry, 0),
	}
}

// HeaderField returns a header field value by name.
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			if strings.EqualFold(key, name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// SyntaxError reports a line the parser could not understand.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads a PO/POT file from a reader.
func Parse(r io.Reader) (*File, error) {
	f := NewFile()
	f.Header = nil
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var current *Entry
	var lastField string // tracks the last msgid/msgstr/etc. field for multiline strings
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		if current.MsgID == "" && current.MsgCtxt == "" && !current.Obsolete && f.Header == nil {
			f.Header = current
		} else {
			f.Entries = append(f.Entries, current)
		}
		current = nil
		lastField = ""
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		// Empty line separates entries
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		line = strings.TrimLeft(line, " \t")

		// A keyword after a complete msgstr starts a new entry even without
		// a separating blank line.
		if current != nil && strings.HasPrefix(lastField, "msgstr") &&
			(strings.HasPrefix(line, "#") || strings.HasPrefix(line, "msgctxt ") || strings.HasPrefix(line, "msgid ")) {
			flush()
		}

		if current == nil {
			current = &Entry{
				MsgStrPlural: make(map[int]string),
				Line:         lineNum,
			}
		}

		// Handle obsolete entries
		if strings.HasPrefix(line, "#~") {
			current.Obsolete = true
			line = strings.TrimLeft(line[2:], " ")
			if strings.HasPrefix(line, "|") {
				// previous-msgid of an obsolete entry
				continue
			}
			if line == "" {
				continue
			}
		}

		// Comment lines
		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, "#:"):
				current.References = append(current.References, strings.TrimSpace(line[2:]))
			case strings.HasPrefix(line, "#,"):
				for _, flag := range strings.Split(line[2:], ",") {
					flag = strings.TrimSpace(flag)
					if flag != "" {
						current.Flags = append(current.Flags, flag)
					}
				}
			case strings.HasPrefix(line, "#."):
				current.ExtractedComments = append(current.ExtractedComments, strings.TrimPrefix(line[2:], " "))
			case strings.HasPrefix(line, "#|"):
				prev := strings.TrimSpace(line[2:])
				if strings.HasPrefix(prev, "msgid ") {
					v, err := unquote(strings.TrimPrefix(prev, "msgid "))
					if err != nil {
						return nil, &SyntaxError{Line: lineNum, Msg: err.Error()}
					}
					current.PreviousMsgID = v
				}
			default:
				comment := line[1:]
				if strings.HasPrefix(comment, " ") {
					comment = comment[1:]
				}
				current.TranslatorComments = append(current.TranslatorComments, comment)
			}
			continue
		}

		field, rest, ok := splitKeyword(line)
		if !ok {
			return nil, &SyntaxError{Line: lineNum, Msg: fmt.Sprintf("unexpected content %q", truncate(line))}
		}
		val, err := unquote(rest)
		if err != nil {
			return nil, &SyntaxError{Line: lineNum, Msg: err.Error()}
		}

		switch {
		case field == "":
			// Continuation line (starts with ")
			if lastField == "" {
				return nil, &SyntaxError{Line: lineNum, Msg: "string continuation without a keyword"}
			}
			appendField(current, lastField, val)
		case field == "msgctxt":
			current.MsgCtxt = val
		case field == "msgid":
			current.MsgID = val
		case field == "msgid_plural":
			current.MsgIDPlural = val
		case field == "msgstr":
			current.MsgStr = val
		case strings.HasPrefix(field, "msgstr["):
			idx, err := pluralIndex(field)
			if err != nil {
				return nil, &SyntaxError{Line: lineNum, Msg: err.Error()}
			}
			current.MsgStrPlural[idx] = val
		}
		if field != "" {
			lastField = field
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}

	// Flush last entry
	flush()
	if f.Header == nil {
		f.Header = &Entry{}
	}

	return f, nil
}

// ParseBytes parses PO data held in memory.
func ParseBytes(data []byte) (*File, error) {
	return Parse(bytes.NewReader(data))
}

// splitKeyword splits a non-comment line into its keyword and the quoted
// remainder. Continuation lines return an empty keyword.
func splitKeyword(line string) (field, rest string, ok bool) {
	if strings.HasPrefix(line, `"`) {
		return "", line, true
	}
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return "", "", false
	}
	field = line[:idx]
	switch {
	case field == "msgctxt", field == "msgid", field == "msgid_plural", field == "msgstr":
	case strings.HasPrefix(field, "msgstr[") && strings.HasSuffix(field, "]"):
	default:
		return "", "", false
	}
	return field, strings.TrimSpace(line[idx:]), true
}

func pluralIndex(field string) (int, error) {
	n, err := strconv.Atoi(field[len("msgstr[") : len(field)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid msgstr index in %q", field)
	}
	return n, nil
}

func appendField(e *Entry, field, val string) {
	switch {
	case field == "msgctxt":
		e.MsgCtxt += val
	case field == "msgid":
		e.MsgID += val
	case field == "msgid_plural":
		e.MsgIDPlural += val
	case field == "msgstr":
		e.MsgStr += val
	case strings.HasPrefix(field, "msgstr["):
		if idx, err := pluralIndex(field); err == nil {
			e.MsgStrPlural[idx] += val
		}
	}
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write writes the PO file to a writer.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	// Write header
	if f.Header != nil {
		writeEntry(bw, f.Header)
	}

	// Write entries
	for i, e := range f.Entries {
		if f.Header != nil || i > 0 {
			fmt.Fprintln(bw)
		}
		writeEntry(bw, e)
	}

	return bw.Flush()
}

// Marshal returns the serialised PO file.
func (f *File) Marshal() []byte {
	var buf bytes.Buffer
	_ = f.Write(&buf) // writes to a bytes.Buffer cannot fail
	return buf.Bytes()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	// Translator comments
	for _, c := range e.TranslatorComments {
		writeComment(w, "#", c)
	}

	// Extracted comments
	for _, c := range e.ExtractedComments {
		writeComment(w, "#.", c)
	}

	// References
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}

	// Flags
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}

	// Previous msgid
	if e.PreviousMsgID != "" {
		fmt.Fprintf(w, "#| msgid %s\n", quote(e.PreviousMsgID))
	}

	if e.MsgCtxt != "" {
		writeQuotedField(w, prefix+"msgctxt", e.MsgCtxt)
	}

	writeQuotedField(w, prefix+"msgid", e.MsgID)

	if e.MsgIDPlural != "" {
		writeQuotedField(w, prefix+"msgid_plural", e.MsgIDPlural)
	}

	// msgstr / msgstr[N]
	if e.MsgIDPlural != "" && len(e.MsgStrPlural) > 0 {
		indices := make([]int, 0, len(e.MsgStrPlural))
		for idx := range e.MsgStrPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeQuotedField(w, fmt.Sprintf("%smsgstr[%d]", prefix, idx), e.MsgStrPlural[idx])
		}
	} else {
		writeQuotedField(w, prefix+"msgstr", e.MsgStr)
	}
}

// writeComment writes one comment line per line of c.
func writeComment(w *bufio.Writer, marker, c string) {
	for _, line := range strings.Split(c, "\n") {
		if line == "" {
			fmt.Fprintf(w, "%s\n", marker)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", marker, line)
	}
}

// writeQuotedField writes a PO field with proper multiline quoting.
func writeQuotedField(w *bufio.Writer, field, value string) {
	if !strings.Contains(value, "\n") || value == "\n" {
		fmt.Fprintf(w, "%s %s\n", field, quote(value))
		return
	}

	// Multiline: use empty string on first line
	fmt.Fprintf(w, "%s \"\"\n", field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s\n", quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

// quote produces a PO-style quoted string.
func quote(s string) string {
	return escape.Quote(s, escape.PO)
}

// unquote removes PO-style quoting from a string.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' || !closedQuote(s) {
		return "", fmt.Errorf("unterminated string %s", truncate(s))
	}
	return escape.Unescape(s[1:len(s)-1], escape.PO), nil
}

// closedQuote reports whether the final quote of s is unescaped, i.e.
// preceded by an even number of backslashes.
func closedQuote(s string) bool {
	n := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 0
}

// ---------------------------------------------------------------------------
// Headers
// ---------------------------------------------------------------------------

// HeaderOptions describes the fields of a generated header.
type HeaderOptions struct {
	Project        string
	Language       string
	SourceLanguage string
	PluralForms    string
	// Now is the creation timestamp; zero means time.Now.
	Now time.Time
}

// MakeHeader creates a standard PO file header entry.
func MakeHeader(opts HeaderOptions) *Entry {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.UTC().Format("2006-01-02 15:04+0000")
	pluralForms := opts.PluralForms
	if pluralForms == "" {
		pluralForms = PluralFormsForLang(opts.Language)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project-Id-Version: %s\n", opts.Project)
	fmt.Fprintf(&b, "POT-Creation-Date: %s\n", stamp)
	fmt.Fprintf(&b, "PO-Revision-Date: %s\n", stamp)
	fmt.Fprintf(&b, "Language: %s\n", opts.Language)
	if opts.SourceLanguage != "" {
		fmt.Fprintf(&b, "X-Source-Language: %s\n", opts.SourceLanguage)
	}
	b.WriteString("MIME-Version: 1.0\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\n")
	fmt.Fprintf(&b, "Plural-Forms: %s\n", pluralForms)

	return &Entry{
		MsgID:  "",
		MsgStr: b.String(),
	}
}

// PluralFormsForLang returns the standard Plural-Forms header for a language code.
func PluralFormsForLang(lang string) string {
	// Normalize to base language
	base := strings.ToLower(lang)
	if idx := strings.IndexAny(base, "_-"); idx > 0 {
		base = base[:idx]
	}

	switch base {
	case "ja", "ko", "zh", "vi", "th", "id", "ms":
		return "nplurals=1; plural=0;"
	case "fr", "pt":
		return "nplurals=2; plural=(n > 1);"
	case "en", "de", "nl", "sv", "da", "no", "nb", "nn", "fi", "es", "it", "el", "he", "hu", "tr", "bg", "hi", "ur":
		return "nplurals=2; plural=(n != 1);"
	case "ru", "uk", "be", "hr", "sr", "bs":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "pl":
		return "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "cs", "sk":
		return "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);"
	case "ro":
		return "nplurals=3; plural=(n==1 ? 0 : (n==0 || (n%100 > 0 && n%100 < 20)) ? 1 : 2);"
	case "lt":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "lv":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n != 0 ? 1 : 2);"
	case "ar":
		return "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);"
	default:
		return "nplurals=2; plural=(n != 1);"
	}
}
