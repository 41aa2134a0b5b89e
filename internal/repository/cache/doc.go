// Package cache persists the download catalog of the last applied update.
//
// The FileRepository stores a verbatim JSON snapshot of the catalog and loads
// it back on the next run to decide whether a newer build is available.
package cache
