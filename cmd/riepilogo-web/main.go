// Command riepilogo-web serves the summary page and JSON API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"riepilogo/internal/app"
)

func main() {
	openBrowser := flag.Bool("open", false, "open the page in the default browser once the server is ready")
	flag.Parse()

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	application.OpenBrowser = *openBrowser

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
