package main

import "github.com/gokernel/coresched/cmd"

func main() {
	cmd.Execute()
}
