package main

import "photodesigner/cmd/designctl/cmd"

func main() {
	cmd.Execute()
}
