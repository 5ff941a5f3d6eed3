// Package markup holds the per-compilation bookkeeping shared by the
// tokenizer, validator chain, renderer and engine: the dependency set and the
// diagnostics collector. Both are owned by a single Markup call and are not
// safe for concurrent use.
package markup
