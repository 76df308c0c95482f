// Package i18n defines the dashboard languages and the Localizer that resolves
// message keys against the embedded catalog bundle.
//
// Three languages are supported: Uzbek in Latin script (the default and the
// authored source), Russian, and Uzbek in Cyrillic script, whose messages are
// generated from the Latin ones by transliteration. A key with no message in
// the active language resolves to the key itself.
package i18n
