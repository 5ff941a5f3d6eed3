// Package token turns markdown source into the token tree consumed by the
// validator chain and the renderer.
//
// The base dialect is CommonMark plus GFM as implemented by goldmark. On top
// of it the tokenizer recognizes include directives ([!include[title](path)])
// in block and inline position, {{name}} placeholders and, in legacy mode, ATX
// headings written without a space after the hashes.
package token
