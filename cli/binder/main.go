package main

import (
	"os"

	bindercmder "github.com/papercomputeco/binder/cmd/binder"
)

func main() {
	cmd := bindercmder.NewBinderCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
