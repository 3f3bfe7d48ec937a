package main

import (
	"tlb/config"
	"tlb/internal/server"
)

func main() {
	config := config.NewConfig()
	server := server.NewServer(config)
	server.Start()
}
