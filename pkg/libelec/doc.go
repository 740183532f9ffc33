// Package libelec exposes Go bindings for the libelec electrical system
// simulator.
//
// The cgo sources are guarded by the libelec build tag because they need
// the native archive and the cgo directives written by "elecbind build":
//
//	elecbind build --target linux
//	go test -tags libelec ./pkg/libelec
//
// bindings_gen.go is regenerated with "go generate" when the headers change.
package libelec
