// Package merge binds UI schema entries to program definition entries by
// name and produces the renderable instruction list. It never fetches
// anything; callers hand it already decoded documents.
package merge
