package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"campus-navigator/cmd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default environment variables")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
