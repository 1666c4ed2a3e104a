// Package naming converts Android resource names into the identifiers that
// ViewBinding generates for them.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntheticPrefix is the package under which kotlinx synthetics expose the
// views of the main source set's layouts.
const SyntheticPrefix = "kotlinx.android.synthetic.main."

// Prefixes carried by id attribute values in layout files.
const (
	ViewIDPrefix    = "@+id/"
	ViewIDRefPrefix = "@id/"
	LayoutRefPrefix = "@layout/"
)

// bindingSuffix is appended by the ViewBinding generator to every class name.
const bindingSuffix = "Binding"

// SnakeToCamel converts snake_case to lowerCamelCase. Empty segments are
// dropped, so "a__b" and "a_b" both become "aB".
func SnakeToCamel(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, part := range strings.Split(s, "_") {
		sb.WriteString(Capitalize(part))
	}
	return DecapitalizeFirst(sb.String())
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DecapitalizeFirst lower-cases the first rune of s.
func DecapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// LayoutToBinding derives the generated binding class from a layout name or
// from a synthetic path remainder ("activity_main.button" uses only the
// segment before the first dot): activity_main -> ActivityMainBinding.
func LayoutToBinding(layout string) string {
	return Capitalize(LayoutToShortLocal(layout)) + bindingSuffix
}

// LayoutToShortLocal returns the camel-cased layout token without the
// "Binding" suffix: activity_main -> activityMain.
func LayoutToShortLocal(layout string) string {
	if i := strings.IndexByte(layout, '.'); i >= 0 {
		layout = layout[:i]
	}
	return SnakeToCamel(layout)
}

// BindingToLocal returns the property name used for a binding in files that
// hold more than one: ActivityMainBinding -> activityMainBinding. The suffix
// is kept.
func BindingToLocal(binding string) string {
	return DecapitalizeFirst(binding)
}

// IsSyntheticImport reports whether an import path belongs to kotlinx synthetics.
func IsSyntheticImport(path string) bool {
	return strings.HasPrefix(path, SyntheticPrefix)
}

// StripViewID removes surrounding quotes and the id prefix from an id
// attribute value: "\"@+id/button_first\"" -> "button_first".
func StripViewID(raw string) string {
	raw = strings.Trim(raw, `"`)
	if s, ok := strings.CutPrefix(raw, ViewIDPrefix); ok {
		return s
	}
	if s, ok := strings.CutPrefix(raw, ViewIDRefPrefix); ok {
		return s
	}
	return raw
}

// IDToProperty converts a raw id value into the binding property name:
// "@+id/button_first" -> buttonFirst.
func IDToProperty(raw string) string {
	return SnakeToCamel(StripViewID(raw))
}
