package main

import (
	"fmt"
	"log"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"timetracker/internal/cli"
	"timetracker/internal/config"
	"timetracker/internal/db"
	"timetracker/internal/report"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	app := &cli.App{OpenReports: openReports}
	err := cli.NewRootCmd(app).Execute()
	db.CloseDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openReports() (*report.Service, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := db.InitDB(); err != nil {
		return nil, err
	}
	return report.NewService(db.Store{}, cfg.ReportOptions()), nil
}
