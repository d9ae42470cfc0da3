package main

import "catwatch-backend/cmd/catwatch/cmd"

func main() {
	cmd.Execute()
}
