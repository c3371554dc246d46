package model

// FormatID identifies a supported file format.
type FormatID string

const (
	FormatJSON        FormatID = "json"
	FormatCSV         FormatID = "csv"
	FormatXLIFF       FormatID = "xliff"  // XLIFF 1.2 on export; 1.2 or 2.0 on import
	FormatXLIFF2      FormatID = "xliff2" // XLIFF 2.0 on export; 1.2 or 2.0 on import
	FormatGettext     FormatID = "gettext"
	FormatStrings     FormatID = "strings"     // Apple .strings
	FormatStringsDict FormatID = "stringsdict" // Apple .stringsdict plist
	FormatARB         FormatID = "arb"
	FormatAndroid     FormatID = "android"
	FormatRESX        FormatID = "resx"
	FormatYAML        FormatID = "yaml"
)

var formats = []FormatID{
	FormatJSON,
	FormatCSV,
	FormatXLIFF,
	FormatXLIFF2,
	FormatGettext,
	FormatStrings,
	FormatStringsDict,
	FormatARB,
	FormatAndroid,
	FormatRESX,
	FormatYAML,
}

// Formats returns every known format id in a stable order.
func Formats() []FormatID {
	return append([]FormatID(nil), formats...)
}

// Valid reports whether f is a known format id.
func (f FormatID) Valid() bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

func (f FormatID) String() string { return string(f) }

// Description returns a short human-readable name for the format.
func (f FormatID) Description() string {
	switch f {
	case FormatJSON:
		return "JSON (namespaced object or flat record array)"
	case FormatCSV:
		return "CSV (Key,Language,Namespace,Value)"
	case FormatXLIFF:
		return "XLIFF 1.2"
	case FormatXLIFF2:
		return "XLIFF 2.0"
	case FormatGettext:
		return "GNU gettext PO/POT"
	case FormatStrings:
		return "Apple .strings"
	case FormatStringsDict:
		return "Apple .stringsdict"
	case FormatARB:
		return "Flutter ARB"
	case FormatAndroid:
		return "Android strings.xml"
	case FormatRESX:
		return ".NET RESX"
	case FormatYAML:
		return "Rails i18n YAML"
	}
	return string(f)
}
