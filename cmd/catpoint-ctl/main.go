package main

import "github.com/oshokin/catpoint/cmd/catpoint-ctl/cmd"

func main() {
	cmd.Execute()
}
