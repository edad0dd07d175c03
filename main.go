package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/sketchplane/pkg/config"
	"github.com/chazu/sketchplane/pkg/construct"
	applog "github.com/chazu/sketchplane/pkg/log"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sketchplane: %v (using defaults)\n", err)
	}
	applog.Init(cfg.LogOptions())
	construct.SetLogger(applog.WithComponent("construct"))

	app := NewAppWithConfig(cfg)
	err = wails.Run(&options.App{
		Title:  "sketchplane",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 30, G: 30, B: 34, A: 1},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		applog.L().Error("wails exited", "err", err)
		os.Exit(1)
	}
}
