// Package text renders app listings and merged instruction lists as plain
// text summaries using pongo2 templates. The default templates are embedded;
// WithTemplatesFS swaps them.
package text
