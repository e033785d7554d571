package main

import (
	"os"

	"github.com/go-librecast/librecast/cmd/lcctl/commands"
)

func main() {
	if err := commands.GetRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
