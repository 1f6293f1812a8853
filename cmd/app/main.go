package main

import (
	"context"
	"os"

	"profitly/app"
	"profitly/bootstrap"
	"profitly/di"
)

func main() {
	os.Exit(bootstrap.Run(context.Background(), os.Args[1:], app.New(di.InitializeServer)))
}
