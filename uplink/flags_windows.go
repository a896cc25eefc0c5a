package uplink

// The bindings link dynamically on Windows: statically linking a Go
// runtime into another Go binary deadlocks in the loader. libuplink.dll
// has to be next to the executable (or on PATH) at run time.

// #cgo CFLAGS: -I${SRCDIR}/../uplink-c/.build
// #cgo LDFLAGS: -L${SRCDIR}/../uplink-c/.build -luplink
// #cgo LDFLAGS: -lws2_32 -luserenv -lbcrypt -lntdll
import "C"
