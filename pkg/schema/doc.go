// Package schema holds the source and document wrappers shared by the app
// documents this module consumes (UI schemas, program definitions, logos),
// plus the Loader contract the provider uses to fetch them. The concrete
// loader lives under internal/loader.
package schema
