package main

import "github.com/telvanni/user-directory/cmd"

func main() {
	cmd.Execute()
}
