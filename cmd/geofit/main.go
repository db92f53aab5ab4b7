// Command geofit fits 2D coordinate transformations to control points.
package main

import (
	"log"
	"os"

	"geofit/cmd/geofit/commands"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
