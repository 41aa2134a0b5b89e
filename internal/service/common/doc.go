// Package common holds helpers shared by several services.
//
// It provides a small HTTP GET helper with status checking, home directory
// expansion for user supplied paths, and lookup of running processes by
// executable name.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
