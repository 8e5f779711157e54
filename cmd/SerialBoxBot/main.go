package main

import (
	"log"

	"github.com/gabzin/SerialBoxBot/internal/api"
	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gabzin/SerialBoxBot/internal/database"
	"github.com/gabzin/SerialBoxBot/internal/telegram"
	"github.com/gabzin/SerialBoxBot/pkg/config"
)

func main() {
	config.Load()

	db := database.InitDB()
	app := container.NewAppContainer(db)

	go func() {
		if err := api.StartApi(app); err != nil {
			log.Printf("API stopped: %v", err)
		}
	}()

	if err := telegram.StartBot(app); err != nil {
		log.Fatal(err)
	}
}
