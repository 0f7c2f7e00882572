package main

import (
	"reddit-status-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
