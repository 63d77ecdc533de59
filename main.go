package main

import (
	"merchant-notification-service/app"
)

func main() {
	app.Run()
}
