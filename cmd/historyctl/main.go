package main

import "backoffice/cmd/historyctl/cmd"

func main() {
	cmd.Execute()
}
