package main

import "github.com/shouni/go-xyzrank-sync/cmd"

func main() {
	cmd.Execute()
}
