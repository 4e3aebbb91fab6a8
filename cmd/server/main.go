package main

import "p9ify/internal/app/server"

func main() {
	server.Run()
}
