package main

import "github.com/simaogato/pemetrics-backend/internal/cli"

func main() {
	cli.Execute()
}
