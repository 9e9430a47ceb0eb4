package main

import "github.com/giantswarm/mcp-gateway/cmd/gateway"

// version is set during build with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
