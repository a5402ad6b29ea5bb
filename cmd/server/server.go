// Package main is the entry point of the odk-dashboard application.
// It sets up and starts the server by calling initialization functions from the internal package.
package main

import (
	"github.com/badili/odk-dashboard3/internal"
)

func main() {
	internal.Init()
}
