package main

import "github.com/heathcliff26/webhook-validator/pkg/server"

func main() {
	server.Execute()
}
