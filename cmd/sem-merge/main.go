package main

import (
	"os"

	"github.com/dshills/sem-merge/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
