// Package form classifies form inputs against a personal profile and fills
// the ones it recognises.
//
// The page is reached only through the Page and Element interfaces, so the
// algorithm runs the same against a parsed HTML document (see htmldoc) or a
// synthetic element list in tests.
package form
