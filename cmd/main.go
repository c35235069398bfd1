package main

import (
	"github.com/openmagecz/roivenue-export/internal/app"
	"github.com/openmagecz/roivenue-export/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
