package main

import (
	"github.com/joho/godotenv"

	"github.com/mansikatarey/Umbra/internal/umbra"
)

func main() {
	_ = godotenv.Load()

	s := umbra.New()
	s.Logger.Info("umbra service starting")
	s.Start()
}
