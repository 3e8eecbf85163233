package main

import (
	"os"

	"github.com/arnvidr/lined/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
