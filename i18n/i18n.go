// Package i18n translates the transkit CLI's own messages.
//
// Catalogs are gettext PO files embedded under
// locales/<lang>/LC_MESSAGES/transkit.po and read through gotext. Init picks
// the catalog closest to the requested language (or to the user's locale
// environment) with a BCP 47 matcher, so "ru_RU.UTF-8", "ru-RU" and "ru"
// all select the Russian catalog. Messages are written in English, which
// needs no catalog.
//
//	lang := i18n.Init("")
//	fmt.Println(i18n.T("File:"))
//	fmt.Println(i18n.N("%d entry", "%d entries", n))
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"

	"github.com/minios-linux/transkit/langmeta"
)

//go:embed all:locales
var locales embed.FS

const (
	domain = "transkit"
	// sourceLang is the language msgids are written in.
	sourceLang = "en"
)

// po is nil while the source language is active.
var po *gotext.Locale

// Init loads the catalog that best matches lang and returns the language
// it selected. An empty lang is read from LANGUAGE, LC_ALL, LC_MESSAGES and
// LANG the way GNU gettext does. Without a match, messages stay in English.
//
// Init should be called once at program startup, before any T() or N() calls.
func Init(lang string) string {
	var prefs []string
	if lang != "" {
		if tag, ok := localeTag(lang); ok {
			prefs = append(prefs, tag)
		}
	} else {
		prefs = localeEnv()
	}

	selected := match(prefs, Available())
	po = nil
	if selected != sourceLang {
		po = gotext.NewLocaleFSWithPath(selected, locales, "locales")
		po.AddDomain(domain)
		po.SetDomain(domain)
	}
	return selected
}

// Available lists the languages the CLI can speak, English first.
func Available() []string {
	langs := []string{sourceLang}
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return langs
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() != sourceLang {
			langs = append(langs, e.Name())
		}
	}
	return langs
}

// T translates a string. If no translation is available, returns the
// original string unchanged (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms chosen by the catalog's
// Plural-Forms formula.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// match returns the entry of avail closest to the preference list, or
// avail[0] when nothing is close enough.
func match(prefs, avail []string) string {
	supported := make([]language.Tag, 0, len(avail))
	for _, a := range avail {
		supported = append(supported, language.Make(a))
	}
	desired := make([]language.Tag, 0, len(prefs))
	for _, p := range prefs {
		desired = append(desired, language.Make(p))
	}
	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return avail[0]
	}
	return avail[idx]
}

// localeEnv returns the user's language preferences, most preferred first.
// LANGUAGE may list several languages separated by colons; of LC_ALL,
// LC_MESSAGES and LANG only the first one set counts.
func localeEnv() []string {
	var prefs []string
	for _, v := range strings.Split(os.Getenv("LANGUAGE"), ":") {
		if tag, ok := localeTag(v); ok {
			prefs = append(prefs, tag)
		}
	}
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			if tag, ok := localeTag(v); ok {
				prefs = append(prefs, tag)
			}
			break
		}
	}
	return prefs
}

// localeTag turns a POSIX locale name ("ru_RU.UTF-8@euro") into a BCP 47
// tag. C and POSIX mean "untranslated" and report false.
func localeTag(v string) (string, bool) {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "C" || v == "POSIX" {
		return "", false
	}
	tag, err := langmeta.Normalize(v)
	if err != nil {
		return "", false
	}
	return tag, true
}
