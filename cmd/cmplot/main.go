package main

import (
	"os"

	"github.com/Brownie44l1/cmplot/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
