package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stemsi/boletim/internal/analysis"
	"github.com/stemsi/boletim/internal/charts"
	"github.com/stemsi/boletim/internal/config"
	"github.com/stemsi/boletim/internal/errlog"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/model"
	"github.com/stemsi/boletim/internal/report"
	"github.com/stemsi/boletim/internal/service"
	"github.com/stemsi/boletim/internal/storage"
)

// cliSession scopes the artifacts of the single run in the in-memory store.
const cliSession = "cli"

func main() {
	cfg := config.Load()

	outDir := flag.String("out", ".", "directory for the PDF and chart files")
	logDir := flag.String("log-dir", cfg.LogDir, "directory holding "+errlog.FileName)
	repeatHeader := flag.Bool("repeat-header", cfg.RepeatTableHeader, "repeat the table header on continuation pages")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <notas.csv|notas.xlsx>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	data, err := os.ReadFile(input)
	if err != nil {
		log.Fatal().Err(err).Str("file", input).Msg("Failed to read input")
	}

	errLog, err := errlog.Open(*logDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open error log")
	}
	defer errLog.Close()

	pipeline := analysis.NewPipeline(
		charts.NewRenderer(),
		report.NewComposer(report.WithRepeatedTableHeader(*repeatHeader)),
		errLog,
		log,
	)
	store := storage.NewMemoryStore(0)
	svc := service.NewAnalysisService(pipeline, store, errLog, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := svc.Analyze(ctx, cliSession, filepath.Base(input), data)
	if err != nil {
		fmt.Fprintln(os.Stderr, service.UserMessage(err))
		var failure *analysis.Failure
		if errors.As(err, &failure) {
			os.Exit(1)
		}
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}
	for _, a := range model.Artifacts {
		body, err := svc.Artifact(ctx, cliSession, a)
		if err != nil {
			log.Fatal().Err(err).Str("artifact", string(a)).Msg("Artifact missing after analysis")
		}
		path := filepath.Join(*outDir, a.Filename())
		if err := os.WriteFile(path, body, 0o644); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to write artifact")
		}
		fmt.Println(path)
	}

	s := result.Summary
	fmt.Printf("Total de alunos: %d\nAprovados: %d\nReprovados: %d\nMédia da turma: %.2f\nPáginas: %d\n",
		s.Total, s.Approved, s.Failed, s.ClassAverage, result.Pages)
}
