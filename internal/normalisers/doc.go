// Package normalisers provides the text extraction chain and the shared
// plumbing its strategies use. Each strategy lives in its own sub-package
// and implements driven.Normaliser for one or more MIME types.
//
// The Chain tries strategies in descending priority until one yields
// usable text. A failing strategy never aborts the chain.
package normalisers
