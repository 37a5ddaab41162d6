package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/askresume/askresume/cmd/askresume/cmd"
)

func main() {
	// Local overrides from .env, matching the original deployment.
	// Missing file is fine.
	_ = godotenv.Overload()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
