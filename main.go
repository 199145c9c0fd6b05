package main

import "github.com/teklab/tekladoc/cmd"

func main() {
	cmd.Execute()
}
