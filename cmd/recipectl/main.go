package main

import "github.com/baxromumarov/recipe-hunter/internal/cli"

func main() {
	cli.Execute()
}
