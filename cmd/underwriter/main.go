package main

import "github.com/landscape-hq/underwriter/internal/cli"

func main() {
	cli.Execute()
}
