package uplink

// #cgo CFLAGS: -I${SRCDIR}/../uplink-c/.build
// #cgo LDFLAGS: ${SRCDIR}/../uplink-c/.build/libuplink.a
// #cgo LDFLAGS: -framework CoreFoundation -framework Security
import "C"
