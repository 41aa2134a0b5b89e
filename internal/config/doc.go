// Package config defines the settings of an update run and provides helpers
// to load, validate and save them in YAML format.
//
// Every setting can also be given on the command line; flags win over the file.
package config
