package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/stemsi/boletim/internal/config"
	"github.com/stemsi/boletim/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	out := flag.String("out", "notas.csv", "output file; the extension (.csv or .xlsx) selects the format")
	count := flag.Int("n", 30, "number of students")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	roster := generateRoster(rng, *count)

	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(*out), ".xlsx"):
		err = writeXLSX(*out, roster)
	case strings.HasSuffix(strings.ToLower(*out), ".csv"):
		err = writeCSVFile(*out, roster)
	default:
		log.Fatal().Str("out", *out).Msg("Output must end in .csv or .xlsx")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write sample")
	}

	fmt.Printf("=== Wrote %d students to %s ===\n", len(roster), *out)
}

func writeCSVFile(path string, roster []student) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(f, roster); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
