package main

import (
	"os"

	"Ossctl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
