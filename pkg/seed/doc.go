// Package seed loads the demo asset catalog and optional measurement
// history into a store.
package seed
