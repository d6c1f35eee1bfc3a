package main

import "github.com/swadeshika/storefront/cmd"

func main() {
	cmd.Start()
}
