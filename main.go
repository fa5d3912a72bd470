package main

import (
	"os"

	"github.com/aieduca/biaslab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
