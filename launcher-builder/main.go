package main

import "native-launchers/go/launcher-builder/cmd"

func main() {
	cmd.Execute()
}
