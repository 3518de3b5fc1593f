package main

import (
	"github.com/luma/ircconn/cmd"
)

func main() {
	cmd.Execute()
}
