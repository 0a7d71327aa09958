// Package inidoc models the extended INI dialect used by Westwood-engine
// rule and map files: named sections with single-parent inheritance,
// append-only `+=` entries rewritten to generated keys, retained comments,
// and an anonymous header block before the first section declaration.
//
// A Document is built either empty or by parsing dialect text; the initree
// package layers `[#include]` resolution and concurrent multi-file reads on
// top of it.
package inidoc
