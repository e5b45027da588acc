package main

import (
	"storsim/internal/cmd"
)

func main() {
	cmd.Run()
}
