package main

import (
	"os"

	"github.com/conneroisu/prescan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
