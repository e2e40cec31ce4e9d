// Package buildout loads the host configuration a recipe runs against.
//
// A configuration is a set of named sections, each a flat mapping of option
// names to string values. The [buildout] section describes the project
// (directory, bin-directory, parts); every other section is a part.
//
// Files ending in .cfg or .ini are read as INI with indented continuation
// lines. TOML (.toml) and YAML (.yaml, .yml) files are also accepted: their
// top-level tables become sections and list values are joined with newlines.
package buildout
