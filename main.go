package main

import "github.com/kawa-dev/contrib-board/cmd"

func main() {
	cmd.Execute()
}
