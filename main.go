package main

import "github.com/unformat/shredder/cmd/shredder"

func main() { shredder.Execute() }
