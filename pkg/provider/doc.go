// Package provider fetches the documents of a registered app (UI schema,
// program definition, logo) and merges them into the instruction list
// renderers consume.
//
// Two surfaces are offered. AppConfig never fails: registry misses and
// unexpected errors are logged and reported as nil. ResolveAppConfig runs
// the same pipeline and returns the error instead.
package provider
