package main

import "github.com/theirongolddev/odash/cmd"

func main() {
	cmd.Execute()
}
