package main

import (
	"roommate_service/startup"
	"roommate_service/startup/config"
)

func main() {
	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
