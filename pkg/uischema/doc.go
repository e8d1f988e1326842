// Package uischema parses the hand-authored UI schema documents that describe
// how each program instruction is presented: labels, help text, widget types,
// default values and visibility for every account and argument. The merge
// package binds these entries to a program definition.
package uischema
