// Package registry holds the static list of programs the wallet knows how to
// present. The list is a read-only artifact loaded once (by default from the
// embedded apps.json) and exposes the URLs of each program's logo, UI schema
// and program definition.
package registry
