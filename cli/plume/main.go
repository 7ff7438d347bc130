package main

import (
	"os"

	plumecmder "github.com/plumechat/plume/cmd/plume"
)

func main() {
	cmd := plumecmder.NewPlumeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
