package main

import (
	"os"

	"github.com/carehours/carebalance/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
