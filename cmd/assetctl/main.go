package main

import (
	"os"

	"github.com/simaogato/assetflow-backend/cmd/assetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
