package main

import "mission-clinic-server/internal/cli"

func main() {
	cli.Execute()
}
