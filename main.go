package main

import (
	"github.com/futurehomeno/edge-indra-adapter/cmd"
)

func main() {
	cmd.Execute()
}
