// Command enginectl is a command-line client for container engines.
package main

import (
	"github.com/tsingmao/enginectl/cmd/enginectl/app"
)

func main() {
	app.Execute()
}
