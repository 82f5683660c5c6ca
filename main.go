package main

import (
	"os"

	"github.com/PolarWolf314/shroud/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
