// Package file provides filesystem-backed stores for draft sessions and
// uploaded document bytes.
//
// Sessions are written as one msgpack file per session so a CLI user can
// continue an application across invocations. Blobs are stored as opaque
// files named by a generated reference.
package file
