// Package updater keeps a dedicated server installation in sync with the
// download catalog.
//
// It resolves the download URL of the tracked build from the remote catalog,
// compares it with the catalog cached at the last applied update, downloads
// the archive to a temporary file when they differ, extracts it over the
// installation directory while preserving excluded user files, and finally
// caches the catalog that was applied.
package updater
