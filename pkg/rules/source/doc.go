// Package source supplies rule documents to the loader.
//
// Directory reads a rules directory on every call: an optional base document,
// then every file whose name starts with the configured prefix, in name
// order, then the optional exclusion document. Static serves documents held in
// memory. Watcher reports changes to a rules directory.
package source
