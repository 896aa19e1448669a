// Package expr tokenizes and type-checks ChoiceScript expressions and
// multireplace templates.
//
// Tokenize runs a fixed pipeline over the expression text: array index
// elision, extraction of quoted, braced and parenthesised spans, word
// boundary chunking of everything else, function/argument combination and
// finally type validation. Parenthesised groups, variable references and
// function arguments are tokenized again as sub-expressions, so every
// diagnostic points at the exact tokens at fault in document offsets.
//
// TokenizeMultireplace splits an @{test a|b|...} construct into its test
// expression and option bodies.
package expr
