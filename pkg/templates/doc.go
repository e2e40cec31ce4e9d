// Package templates resolves template names to template text.
//
// A Store answers a single question: given a name, what is its text? The
// bundled store reads from the resources compiled into the binary under
// templates/, the directory store reads from a directory on disk, and Chain
// asks a list of stores in order. Stores never cache; every Resolve reads
// the source again.
package templates
