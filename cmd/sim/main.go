package main

import "pdp-route-service/cmd/sim/cmd"

func main() {
	cmd.Execute()
}
