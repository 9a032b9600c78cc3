package main

import (
	"os"

	"github.com/docflow/atlasmigrate/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
