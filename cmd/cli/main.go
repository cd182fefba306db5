package main

import (
	"github.com/mcoot/quickchess/internal/cli"
)

func main() {
	cli.Execute()
}
