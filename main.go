package main

import "github.com/a68go/a68go/cmd"

func main() {
	cmd.Execute()
}
