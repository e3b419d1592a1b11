package main

import "github.com/pilacorp/go-did-sdk/cmd"

func main() {
	cmd.Execute()
}
