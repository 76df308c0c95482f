// Package dashboard serves the browser dashboard's local API: localized
// message catalogs, transliteration, language options and operator settings.
//
// The language of a request comes from the lang query parameter, the
// tanlov_lang cookie, Accept-Language, then the stored settings, in that
// order. Error responses are JSON envelopes rendered in that language.
package dashboard
