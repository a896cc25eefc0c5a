// Package uplink contains the generated cgo interface for the uplink-c
// library. bindings.go is produced by the uplink-cgo build command; the
// flags_*.go files carry the per-platform linkage and are maintained by
// hand. Run `uplink-cgo build` after changing bindings.star or updating
// the uplink-c checkout.
package uplink
