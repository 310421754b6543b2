package main

import (
	"os"

	"github.com/xshopai/seeder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
