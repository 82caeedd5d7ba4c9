package main

import (
	"os"

	"github.com/leengari/labcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
