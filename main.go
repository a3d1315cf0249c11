package main

import "github.com/ashStableLogic/security-group-mapper/cmd"

func main() {
	cmd.Execute()
}
