/*
Copyright © 2025 bizpilot
*/
package main

import (
	"github.com/bizpilot/bizpilot-be/cmd"

	"github.com/joho/godotenv"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		// .env is optional, environment may be configured directly
		return
	}
}
