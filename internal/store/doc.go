// Package store persists per-user newsletter group documents.
//
// The canonical backend is a GitHub Gist holding one JSON file per user, a
// remote blob with whole-document replace semantics: there is no
// compare-and-swap, so concurrent writers can clobber each other. Callers
// must serialize updates per user. A local directory backend with the same
// file layout exists for development and for single-host deployments.
package store
