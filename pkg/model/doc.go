// Package model defines the merged instruction list handed to renderers:
// UI schema presentation fields paired with the data binding (account slot
// or argument position) taken from the program definition.
package model
