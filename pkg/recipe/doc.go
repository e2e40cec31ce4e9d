// Package recipe implements the binscript recipe: it turns one buildout part
// into an executable file in the bin directory.
//
// A part names a template; the recipe renders it against the buildout
// section overlaid with the part's own options and writes the result to
// <bin-directory>/<target> with execute bits added. Construction validates
// that the template exists so a misconfigured part fails before anything
// is written.
//
//	[buildout]
//	parts = env
//
//	[env]
//	recipe = binscript
//	template = env.sh
//
// renders the bundled env.sh template to bin/env.
package recipe
