// Package index holds the project symbol table: per-document variable
// creations and references, labels, flow-control events, achievement
// references, exemption scopes, parse errors and word counts, plus the
// project-wide globals, achievements and scene list owned by startup.txt.
//
// An Index is an explicit value; there is no package-level instance.
// Writers replace a document's entries wholesale, readers get point-in-time
// views. All name lookups are case-insensitive.
package index
