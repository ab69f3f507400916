package render

import "strings"

var attrReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// escapeAttr escapes a value for a double-quoted attribute of the svg root.
func escapeAttr(s string) string {
	return attrReplacer.Replace(s)
}
