// cmd/quizfire/main.go
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/quizfire/quizfire/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
