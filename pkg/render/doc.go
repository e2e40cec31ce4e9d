// Package render substitutes %(key)s placeholders in template text.
//
// Rendering is strict: the whole template is scanned before any output is
// produced, and a template that references keys missing from the context
// fails with a single error listing every missing key.
//
// Supported syntax:
//
//	%(key)s   replaced by the context value for "key"
//	%%        a literal percent sign
//
// Keys may contain balanced parentheses. Every other use of % is a syntax
// error; there are no conversions, flags, or widths.
package render
