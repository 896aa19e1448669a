// Package diag defines the diagnostic model shared by the tokenizer, the
// indexer and the validator.
//
// A Diagnostic carries a Severity, a compact numeric Code with a stable
// string form (see codes.go), a short message and the byte Span of the
// offending text inside one document. Ranges in editor coordinates are only
// computed at the protocol boundary, where the document text is at hand.
//
// Severities follow three categories:
//
//   - SevError – malformed syntax and unambiguous validation failures.
//   - SevWarning – findings that may go away once more of the project is
//     indexed, such as a scene that has not been seen yet.
//   - SevInfo – house-style suggestions; producers only emit them when the
//     style guide is enabled.
//
// Producers either build diagnostics with New/NewError/... or report them
// through a Reporter. Bag gives sorting, deduplication and a size limit.
package diag
