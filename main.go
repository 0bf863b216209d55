package main

import "github.com/pitgrid/boostrace-service-go/cmd"

func main() {
	cmd.Execute()
}
