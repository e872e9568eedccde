// Package main provides the entry point for the newsletter generator
package main

import (
	"fmt"
	"os"

	"github.com/appestoicismo/newsllater/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
