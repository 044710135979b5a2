package main

import (
	"os"

	"github.com/sorsimple/obslayer/cmd/obslayer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
