package main

import (
	"context"
	"covidwatch/cmd/covidwatch/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
