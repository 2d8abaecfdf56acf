package main

import "github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/cmd"

func main() {
	cmd.Execute()
}
