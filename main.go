package main

import (
	"os"

	"github.com/simple-bulletin/simple-bulletin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
