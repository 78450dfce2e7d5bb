package main

import (
	"os"

	"github.com/staylink/concierge/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
