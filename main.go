package main

import "tradetide-backend/cmd"

func main() {
	cmd.Run()
}
