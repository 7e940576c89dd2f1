package main

import (
	"os"
)

const (
	serviceName = "wildcare-compliance-engine"
	version     = "1.0.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
