// Command transkit converts localization files between translation formats.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/minios-linux/transkit/config"
	"github.com/minios-linux/transkit/i18n"
	"github.com/minios-linux/transkit/langmeta"
	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/preview"
	"github.com/minios-linux/transkit/registry"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// setupLogging installs a tint handler on w as the default slog logger.
func setupLogging(w io.Writer, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	})))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func logInfo(format string, args ...any) {
	slog.Info(fmt.Sprintf(format, args...))
}

func logDebug(format string, args ...any) {
	slog.Debug(fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	slog.Warn(fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
}

// logSkipped reports the entries a decoder dropped.
func logSkipped(path string, doc *model.Document) {
	for _, w := range doc.Warnings {
		attrs := []any{"file", path, "reason", w.Reason}
		if w.Key != "" {
			attrs = append(attrs, "key", w.Key)
		}
		if w.Line > 0 {
			attrs = append(attrs, "line", w.Line)
		}
		if w.Index >= 0 {
			attrs = append(attrs, "record", w.Index)
		}
		slog.Warn(i18n.T("Skipped entry"), attrs...)
	}
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
	cfg     *config.Config
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transkit",
		Short: "Convert localization files between translation formats",
		Long: `transkit converts localization files between translation formats.

Every format is read into one shared model of translation units (key,
source text, target text, namespace, description, context) and can be
written back out in any other format.

Formats:
  json         Namespaced JSON object or flat record array
  csv          Key,Language,Namespace,Value
  xliff        XLIFF 1.2 (reads 1.2 and 2.0)
  xliff2       XLIFF 2.0 (reads 1.2 and 2.0)
  gettext      GNU gettext PO/POT
  strings      Apple .strings
  stringsdict  Apple .stringsdict
  arb          Flutter ARB
  android      Android strings.xml
  resx         .NET RESX
  yaml         Rails i18n YAML

Settings are read from .transkit.yaml (or .transkit.toml) in the --root
directory and from TRANSKIT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			cfg = loaded
			uiLang := i18n.Init(cfg.UILang)
			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			setupLogging(cmd.ErrOrStderr(), level)
			if cfg.Path != "" {
				logDebug("Loaded settings from %s", cfg.Path)
			}
			logDebug("Interface language: %s", uiLang)
			return nil
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Directory to read .transkit.yaml from")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newDetectCmd(),
		newInspectCmd(),
		newConvertCmd(),
		newPreviewCmd(),
		newFormatsCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		setupLogging(os.Stderr, "info")
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "transkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// formats (list supported formats)
// ---------------------------------------------------------------------------

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, f := range registry.Default().Formats() {
				fmt.Fprintf(out, "  %-12s %s\n", f, f.Description())
			}
		},
	}
}

// ---------------------------------------------------------------------------
// detect (guess formats from file names)
// ---------------------------------------------------------------------------

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Show the format detected for each file name",
		Long: `Print the format transkit would use for each file, judged by its name
alone. The file does not need to exist.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, path := range args {
				fmt.Fprintf(out, "%s\t%s\n", path, resolveFormat(path))
			}
		},
	}
}

// resolveFormat detects the format of path, falling back to the configured
// default format when the name does not identify one.
func resolveFormat(path string) model.FormatID {
	detected := registry.DetectFormat(path)
	if detected == model.FormatJSON && !strings.EqualFold(filepath.Ext(path), ".json") && cfg != nil && cfg.Format() != "" {
		return cfg.Format()
	}
	return detected
}

// formatFor returns the format named by flag, or the detected one.
func formatFor(path, flag string) (model.FormatID, error) {
	if flag != "" {
		return registry.ParseFormatID(flag)
	}
	return resolveFormat(path), nil
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

// readInput reads path ("-" for standard input), refusing anything larger
// than the configured limit.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	limit := int64(config.DefaultMaxInputBytes)
	if cfg != nil {
		limit = cfg.MaxInputBytes
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf(i18n.T("%s is larger than the %d byte limit (max_input_bytes)"), path, limit)
	}
	return data, nil
}

// load reads and decodes path, logging skipped entries.
func load(cmd *cobra.Command, path, formatFlag string) (*model.Document, error) {
	format, err := formatFor(path, formatFlag)
	if err != nil {
		return nil, err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	logDebug("Parsing %s as %s", path, format)
	doc, err := registry.Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logSkipped(path, doc)
	return doc, nil
}

// ---------------------------------------------------------------------------
// inspect (summarize a file)
// ---------------------------------------------------------------------------

func newInspectCmd() *cobra.Command {
	var (
		formatFlag string
		showUnits  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show languages, unit count and translation progress of a file",
		Long: `Parse a file and print its format, languages, number of translation
units and how many of them carry a translation. Entries that could not be
read are logged as warnings. Does not modify any files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(cmd, args[0], formatFlag)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), args[0], doc, isTerminal(cmd.OutOrStdout()))
			if showUnits {
				printUnits(cmd.OutOrStdout(), doc.Units)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format (default: detect from file name)")
	cmd.Flags().BoolVarP(&showUnits, "units", "u", false, "List every unit")

	return cmd
}

func printSummary(w io.Writer, path string, doc *model.Document, color bool) {
	src, tgt := doc.Languages()
	translated := 0
	for _, u := range doc.Units {
		if u.TargetText != "" {
			translated++
		}
	}
	percent := 0
	if len(doc.Units) > 0 {
		percent = translated * 100 / len(doc.Units)
	}

	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("File:"), path)
	fmt.Fprintf(w, "  %-12s %s (%s)\n", i18n.T("Format:"), doc.Format, doc.Format.Description())
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Source:"), langCell(src))
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Target:"), langCell(tgt))
	fmt.Fprintf(w, "  %-12s %d\n", i18n.T("Units:"), len(doc.Units))
	fmt.Fprintf(w, "  %-12s %s (%d/%d)\n", i18n.T("Translated:"), progressBar(percent, 20, color), translated, len(doc.Units))
	if len(doc.Warnings) > 0 {
		fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Skipped:"),
			fmt.Sprintf(i18n.N("%d entry", "%d entries", len(doc.Warnings)), len(doc.Warnings)))
	}
}

func printUnits(w io.Writer, units []model.TranslationUnit) {
	width := 0
	for _, u := range units {
		if n := utf8.RuneCountInString(u.QualifiedKey()); n > width {
			width = n
		}
	}
	fmt.Fprintln(w)
	for _, u := range units {
		fmt.Fprintf(w, "  %-*s  %s\n", width, u.QualifiedKey(), truncate(u.Text(), 60))
	}
}

// langCell renders a language code with its flag and native name.
func langCell(code string) string {
	m := langmeta.Resolve(code)
	var b strings.Builder
	if m.Flag != "" {
		b.WriteString(m.Flag + " ")
	}
	b.WriteString(m.Code)
	if m.Name != "" && m.Name != m.Code {
		b.WriteString("  " + m.Name)
	}
	return b.String()
}

// progressBar renders a fixed-width bar, coloured by completeness.
func progressBar(percent, width int, color bool) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if color {
		c := colorRed
		switch {
		case percent == 100:
			c = colorGreen
		case percent >= 50:
			c = colorYellow
		}
		bar = c + bar + colorReset
	}
	return fmt.Sprintf("%s %3d%%", bar, percent)
}

// truncate shortens s to n runes on one line.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// ---------------------------------------------------------------------------
// convert (re-encode a file in another format)
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	var (
		fromFlag   string
		toFlag     string
		outPath    string
		sourceLang string
		targetLang string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a file to another format",
		Long: `Read a translation file and write it in another format.

The input format is detected from the file name unless --from is given.
Use "-" to read standard input. Output goes to standard output unless
--output is given; an existing output file is only replaced with --force.

Examples:
  transkit convert messages.po --to xliff -o messages.xlf
  transkit convert app_fr.arb --to android --target-lang fr
  cat strings.xml | transkit convert - --from android --to yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toFlag == "" {
				return errors.New(i18n.T("--to is required"))
			}
			to, err := registry.ParseFormatID(toFlag)
			if err != nil {
				return err
			}
			if outPath != "" && !force && fileExists(outPath) {
				return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), outPath)
			}

			doc, err := load(cmd, args[0], fromFlag)
			if err != nil {
				return err
			}
			src, tgt := convertLanguages(doc, sourceLang, targetLang)
			data, err := registry.Export(to, doc.Units, src, tgt)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			logInfo(i18n.T("Wrote %d units to %s (%s)"), len(doc.Units), outPath, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Input format (default: detect from file name)")
	cmd.Flags().StringVarP(&toFlag, "to", "t", "", "Output format")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default: standard output)")
	cmd.Flags().StringVar(&sourceLang, "source-lang", "", "Source language written to the output")
	cmd.Flags().StringVar(&targetLang, "target-lang", "", "Target language written to the output")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing output file")

	return cmd
}

// convertLanguages picks the languages written on export: flags first, then
// the document, then the configuration.
func convertLanguages(doc *model.Document, sourceFlag, targetFlag string) (string, string) {
	src, tgt := doc.SourceLanguage, doc.TargetLanguage
	if cfg != nil && cfg.TargetLang != "" {
		tgt = cfg.TargetLang
	}
	if sourceFlag != "" {
		src = sourceFlag
	}
	if targetFlag != "" {
		tgt = targetFlag
	}
	if src == "" && cfg != nil {
		src = cfg.SourceLang
	}
	return src, tgt
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ---------------------------------------------------------------------------
// preview (render a key the way an application would)
// ---------------------------------------------------------------------------

func newPreviewCmd() *cobra.Command {
	var (
		key        string
		lang       string
		count      int
		formatFlag string
		data       map[string]string
	)

	cmd := &cobra.Command{
		Use:   "preview <file>...",
		Short: "Render a key from one or more translation files",
		Long: `Load translation files into a message catalog and render one key for a
language, with plural selection and template data, the way an application
using go-i18n would.

Plural forms are read from keys ending in ":one", ":other" and the other
CLDR categories. Template placeholders use Go template syntax ({{.Name}});
plural messages without --set data can use {{.PluralCount}}.

Examples:
  transkit preview fr.yml --key nav::home --lang fr
  transkit preview Localizable.stringsdict --key files --count 3
  transkit preview en.arb fr.arb --key welcome --lang fr --set Name=Ada`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errors.New(i18n.T("--key is required"))
			}
			var docs []*model.Document
			for _, path := range args {
				doc, err := load(cmd, path, formatFlag)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			catalog, err := preview.NewCatalog(docs...)
			if err != nil {
				return err
			}
			logDebug("Catalog languages: %s", strings.Join(catalog.Languages(), ", "))
			if lang == "" {
				lang = docs[len(docs)-1].TargetLanguage
			}

			var tmpl map[string]any
			if len(data) > 0 {
				tmpl = make(map[string]any, len(data))
				for k, v := range data {
					tmpl[k] = v
				}
			}
			out, err := catalog.Lookup(lang, key, count, tmpl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Qualified key to render (namespace::key)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to render (default: target language of the last file)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Plural count")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format (default: detect from file name)")
	cmd.Flags().StringToStringVar(&data, "set", nil, "Template data as name=value pairs")

	return cmd
}
