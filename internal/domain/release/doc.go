// Package release contains the core domain types of the updater.
//
// It defines DownloadType (which build of the catalog is tracked) and
// ExclusionSet (user-owned files that survive an update when already present).
package release
