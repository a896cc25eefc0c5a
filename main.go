package main

import (
	"github.com/uplink-community/uplink-cgo/cmd"
)

func main() {
	cmd.Execute()
}
