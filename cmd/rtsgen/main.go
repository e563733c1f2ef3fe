package main

import "github.com/goplus/rtsgen/cmd/rtsgen/internal"

func main() {
	internal.Execute()
}
