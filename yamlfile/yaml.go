// Package yamlfile implements reading and writing of Rails i18n YAML
// translation files.
//
// The language code is the top-level key, each mapping one level down is a
// namespace, and string leaves are translations:
//
//	en:
//	  greeting: Hello
//	  nav:
//	    home: Home
//	    footer:
//	      about: About
//
// decodes to "greeting" (no namespace), "home" and "footer.about" (namespace
// "nav"). The "default" namespace means none. Non-string leaves (numbers,
// booleans, nulls, sequences) are skipped and reported as warnings.
package yamlfile

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/transkit/escape"
	"github.com/minios-linux/transkit/model"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Decode parses Rails i18n YAML. Only the first top-level language is read;
// any further languages are reported as warnings.
func Decode(data []byte) (*model.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, parseError(err)
	}

	doc := model.NewDocument(model.FormatYAML)

	// yaml.Unmarshal wraps the document in a DocumentNode.
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty file.
		return doc, nil
	}
	top := resolve(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, model.ParseErrorAt(model.FormatYAML, top.Line,
			fmt.Errorf("root must be a mapping of language codes, got %s", kindName(top)))
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valNode := top.Content[i], resolve(top.Content[i+1])
		switch {
		case doc.TargetLanguage != "":
			doc.Skipf(keyNode.Value, keyNode.Line, "additional language %q ignored", keyNode.Value)
		case valNode.Kind != yaml.MappingNode:
			doc.Skipf(keyNode.Value, keyNode.Line, "language %q is not a mapping", keyNode.Value)
		default:
			doc.TargetLanguage = keyNode.Value
			collectLanguage(doc, valNode)
		}
	}
	return doc, nil
}

// collectLanguage reads the mapping under the language key.
func collectLanguage(doc *model.Document, node *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], resolve(node.Content[i+1])
		switch valNode.Kind {
		case yaml.MappingNode:
			ns := keyNode.Value
			if model.IsDefaultNamespace(ns) {
				ns = ""
			}
			collectEntries(doc, valNode, ns, "")
		default:
			addLeaf(doc, keyNode, valNode, "", keyNode.Value)
		}
	}
}

// collectEntries recursively walks a namespace mapping and appends leaf
// entries with dot-joined keys.
func collectEntries(doc *model.Document, node *yaml.Node, ns, prefix string) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], resolve(node.Content[i+1])
		path := prefix + keyNode.Value
		if valNode.Kind == yaml.MappingNode {
			collectEntries(doc, valNode, ns, path+".")
			continue
		}
		addLeaf(doc, keyNode, valNode, ns, path)
	}
}

func addLeaf(doc *model.Document, keyNode, valNode *yaml.Node, ns, key string) {
	if valNode.Kind != yaml.ScalarNode || valNode.ShortTag() != "!!str" {
		doc.Skipf(key, keyNode.Line, "non-string value (%s)", kindName(valNode))
		return
	}
	doc.Add(model.TranslationUnit{Key: key, Namespace: ns, SourceText: valNode.Value})
}

// resolve follows alias nodes to their anchors.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return n.ShortTag()
	}
	return "node"
}

// parseError converts a yaml.v3 error ("yaml: line 3: ...") into a
// *model.ParseError.
func parseError(err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	var line int
	if n, _ := fmt.Sscanf(msg, "line %d:", &line); n == 1 {
		msg = strings.TrimSpace(msg[strings.IndexByte(msg, ':')+1:])
	}
	return model.ParseErrorAt(model.FormatYAML, line, errors.New(msg))
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Encode writes units as {language: {namespace: {key: value}}}. The
// language is the target, else the source, else "en". Units without a
// namespace go under "default". Every key and value is double-quoted.
func Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	lang := targetLang
	if lang == "" {
		lang = sourceLang
	}
	if lang == "" {
		lang = model.DefaultLanguage
	}

	var order []string
	groups := make(map[string][]model.TranslationUnit)
	for _, u := range units {
		ns := u.NamespaceOrDefault()
		if _, seen := groups[ns]; !seen {
			order = append(order, ns)
		}
		groups[ns] = append(groups[ns], u)
	}

	var b strings.Builder
	b.WriteString(quote(lang))
	if len(order) == 0 {
		b.WriteString(": {}\n")
		return []byte(b.String())
	}
	b.WriteString(":\n")
	for _, ns := range order {
		fmt.Fprintf(&b, "  %s:\n", quote(ns))
		for _, u := range groups[ns] {
			fmt.Fprintf(&b, "    %s: %s\n", quote(u.Key), quote(u.Text()))
		}
	}
	return []byte(b.String())
}

func quote(s string) string {
	return escape.Quote(s, escape.YAML)
}
