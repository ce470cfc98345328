package main

import (
	"github.com/runtime-analysis/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
