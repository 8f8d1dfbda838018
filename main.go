package main

import "github.com/thereayou/fileflow/cmd/server"

func main() {
	server.NewServer().Run()
}
