// Package language describes the static surface of ChoiceScript: its
// commands, operators, built-in functions and variables, and the patterns
// used to find them in scene text.
//
// Every table is built once at package initialisation and never mutated.
// Regular expressions stay private to this package; callers use the typed
// scanners (ParseCommandLine, ScanReplacements, ScanInlineCommands, ...)
// which return structured matches with byte offsets.
package language
