package main

import (
	"github.com/herbarium/florasync/internal/cli"
)

func main() {
	cli.Execute()
}
