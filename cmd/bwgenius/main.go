package main

import (
	"github.com/munidon/bw-genius/internal/cli"
)

func main() {
	cli.Execute()
}
