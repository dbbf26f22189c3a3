package main

import (
	"os"

	"github.com/scriptpad-app/scriptpad/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
