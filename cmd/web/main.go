// Command web runs the simultaneous heating + cooling analyzer server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"simulcheck/internal/app"
)

func main() {
	// Optional .env for local development; config falls back to defaults.
	_ = godotenv.Load()

	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
