// Package manifest models the download catalog as an untyped JSON document.
//
// Document wraps a gabs container and exposes fallible accessors so that the
// lookup of a download link never panics on an unexpected shape.
package manifest
