// package main holds the nextmv app that solves a JSON hub-location instance.
package main

import (
	"log"
)

func main() {
	err := HubRun(buildSolver)
	if err != nil {
		log.Fatal(err)
	}
}
