package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/cibyj/socialcal/internal/cli"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
