package render

// Context is the flat key/value mapping placeholders are resolved against.
type Context map[string]string

// Merge overlays layers in order into a fresh Context. Later layers win on
// key collision; nil layers are skipped.
func Merge(layers ...map[string]string) Context {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	ctx := make(Context, size)
	for _, l := range layers {
		for k, v := range l {
			ctx[k] = v
		}
	}
	return ctx
}
