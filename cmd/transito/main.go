package main

import (
	"log"

	"github.com/maxsviluppo/Aitraffic/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
