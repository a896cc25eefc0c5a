package uplink

// #cgo CFLAGS: -I${SRCDIR}/../uplink-c/.build
// #cgo LDFLAGS: ${SRCDIR}/../uplink-c/.build/libuplink.a
import "C"
