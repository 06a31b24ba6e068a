package main

import (
	"log"

	"github.com/fieldstone/redline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
