package main

import (
	"os"

	"github.com/sanjoy16/C-Autograder-Pro/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
