package main

import "github.com/csweichel/assetidx/cmd"

func main() {
	cmd.Execute()
}
