package main

import (
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/zhfeng1/OVH/internal/app"
	"github.com/zhfeng1/OVH/internal/config"
	"github.com/zhfeng1/OVH/internal/inspect"
)

// Prints the account API route table and checks that the email-history
// route is registered. Builds the application with the same wiring as the
// server but never starts listening.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	// Keep the report free of framework and application log output.
	cfg.Server.Mode = gin.ReleaseMode
	cfg.Log.Level = "error"
	cfg.Log.FilePath = ""

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("failed to create app: ", err)
	}
	defer a.Close()

	records := inspect.Filter(inspect.Collect(a.Engine().Routes()), inspect.AccountPathFragment)

	if err := inspect.WriteTable(os.Stdout, records); err != nil {
		log.Fatal("write report: ", err)
	}
	if err := inspect.WriteCheck(os.Stdout, inspect.ContainsPath(records, inspect.EmailHistoryPathFragment)); err != nil {
		log.Fatal("write report: ", err)
	}
}
