package main

import (
	"github.com/Famer-0/Tg-bot/app"
	"github.com/Famer-0/Tg-bot/core/cmd"
)

func main() {
	cmd.Run(app.LoadConfig, app.Build)
}
