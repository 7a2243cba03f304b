package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"fraudlens/internal/config"
	"fraudlens/internal/scoring"
)

func main() {
	config.LoadEnv()

	modelPath := config.Load().ModelPath
	force := os.Getenv("MODEL_SEED_FORCE") == "true"

	if _, err := os.Stat(modelPath); err == nil && !force {
		log.Printf("Model already exists at %s", modelPath)
		return
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal("Failed to inspect model path:", err)
	}

	if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
		log.Fatal("Failed to create model directory:", err)
	}

	model := scoring.Pretrained()
	if err := model.Save(modelPath); err != nil {
		log.Fatal("Failed to write model:", err)
	}

	log.Printf("✅ Model %s written to %s", model.Info().Version, modelPath)
}
