package main

import (
	"context"
	"os"

	"github.com/ent0n29/neuromod/internal/cli"
)

func main() {
	if err := cli.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
