package main

import (
	"os"

	"github.com/yasminekh/trendgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
