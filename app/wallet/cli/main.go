package main

import "github.com/edublock/edublock/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
