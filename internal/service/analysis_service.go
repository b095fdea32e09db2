package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/analysis"
	"github.com/stemsi/boletim/internal/config"
	"github.com/stemsi/boletim/internal/errlog"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/model"
	"github.com/stemsi/boletim/internal/report"
	"github.com/stemsi/boletim/internal/storage"
)

// Sentinel errors for grade sheet uploads.
var (
	ErrUnsupportedFormat = analysis.ErrUnsupportedFormat
	ErrFileTooLarge      = errors.New("file too large")
	ErrNoSession         = errors.New("no session")
)

// FileTooLargeMessage is shown when an upload exceeds the configured limit.
const FileTooLargeMessage = "Arquivo excede o tamanho máximo permitido."

// Analysis is the outcome of a successful upload.
type Analysis struct {
	ID        string            `json:"id"`
	Filename  string            `json:"arquivo"`
	Columns   []string          `json:"colunas"`
	Rows      []model.ScoredRow `json:"alunos"`
	Summary   model.Summary     `json:"resumo"`
	Pages     int               `json:"paginas"`
	CreatedAt time.Time         `json:"criado_em"`
}

// Table renders every row as display strings following Columns.
func (a *Analysis) Table() [][]string {
	out := make([][]string, len(a.Rows))
	for i, row := range a.Rows {
		line := make([]string, len(a.Columns))
		for j, col := range a.Columns {
			switch col {
			case model.ColumnAverage:
				line[j] = fmt.Sprintf("%.2f", row.Average)
			case model.ColumnStatus:
				line[j] = string(row.Status)
			default:
				line[j] = row.Cells[col].String()
			}
		}
		out[i] = line
	}
	return out
}

// AnalysisService runs uploads through the pipeline and keeps the resulting
// artifacts per session.
type AnalysisService struct {
	pipeline       *analysis.Pipeline
	store          storage.Store
	errLog         errlog.Appender
	log            zerolog.Logger
	maxUploadBytes int64
	now            func() time.Time
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	pipeline *analysis.Pipeline,
	store storage.Store,
	errLog errlog.Appender,
	cfg *config.Config,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		pipeline:       pipeline,
		store:          store,
		errLog:         errLog,
		log:            logger.Component(log, "analysis_service"),
		maxUploadBytes: cfg.MaxUploadBytes,
		now:            time.Now,
	}
}

// AnalyzeUpload reads a multipart file and analyzes it.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, sessionID string, header *multipart.FileHeader) (*Analysis, error) {
	if _, err := analysis.FormatFromFilename(header.Filename); err != nil {
		return nil, err
	}
	if s.maxUploadBytes > 0 && header.Size > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxUploadBytes)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return s.Analyze(ctx, sessionID, header.Filename, data)
}

// Analyze runs the pipeline on data and, when every stage succeeds, stores the
// report and both charts under the session. Unsupported extensions and
// oversized files are rejected before the pipeline and are not logged.
func (s *AnalysisService) Analyze(ctx context.Context, sessionID, filename string, data []byte) (*Analysis, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	format, err := analysis.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, len(data), s.maxUploadBytes)
	}

	id := uuid.New().String()
	log := s.log.With().Str("analysis_id", id).Str("file", filename).Logger()

	res, err := s.pipeline.Run(analysis.Input{Data: data, Format: format})
	if err != nil {
		return nil, err
	}

	if err := s.store.PutMany(ctx, s.artifactEntries(sessionID, res)); err != nil {
		unexpected := &analysis.UnexpectedError{Err: err}
		if logErr := s.errLog.Append(unexpected.Error(), s.now()); logErr != nil {
			log.Error().Err(logErr).Msg("Failed to append to error log")
		}
		log.Error().Err(err).Msg("Failed to store artifacts")
		return nil, unexpected
	}

	pages := res.Report.Pages
	if n, err := report.PageCount(res.Report.Data); err != nil {
		log.Warn().Err(err).Msg("Could not inspect generated report")
	} else if n != pages {
		log.Warn().Int("composed", pages).Int("parsed", n).Msg("Report page count mismatch")
		pages = n
	}

	log.Info().
		Int("students", res.Summary.Total).
		Int("approved", res.Summary.Approved).
		Int("failed", res.Summary.Failed).
		Int("pages", pages).
		Msg("Analysis stored")

	return &Analysis{
		ID:        id,
		Filename:  filename,
		Columns:   displayColumns(res.Table.Columns),
		Rows:      res.Rows,
		Summary:   res.Summary,
		Pages:     pages,
		CreatedAt: res.Report.GeneratedAt,
	}, nil
}

// Artifact returns a stored artifact of the session's latest analysis.
func (s *AnalysisService) Artifact(ctx context.Context, sessionID string, a model.Artifact) ([]byte, error) {
	if sessionID == "" {
		return nil, storage.ErrNotFound
	}
	return s.store.Get(ctx, config.CacheKey.ArtifactKey(sessionID, string(a)))
}

func (s *AnalysisService) artifactEntries(sessionID string, res *analysis.Result) map[string][]byte {
	data := map[model.Artifact][]byte{
		model.ArtifactReport:       res.Report.Data,
		model.ArtifactDistribution: res.Charts.Distribution.Data,
		model.ArtifactPerformance:  res.Charts.Performance.Data,
	}
	entries := make(map[string][]byte, len(data))
	for a, b := range data {
		entries[config.CacheKey.ArtifactKey(sessionID, string(a))] = b
	}
	return entries
}

// displayColumns appends the derived columns, replacing any input columns
// with the same names.
func displayColumns(columns []string) []string {
	out := make([]string, 0, len(columns)+2)
	for _, c := range columns {
		if c == model.ColumnAverage || c == model.ColumnStatus {
			continue
		}
		out = append(out, c)
	}
	return append(out, model.ColumnAverage, model.ColumnStatus)
}

// UserMessage converts an error returned by the service into the single
// message shown to the user.
func UserMessage(err error) string {
	var (
		failure    *analysis.Failure
		unexpected *analysis.UnexpectedError
	)
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return analysis.UnsupportedFormatMessage
	case errors.Is(err, ErrFileTooLarge):
		return FileTooLargeMessage
	case errors.As(err, &failure):
		return failure.Message()
	case errors.As(err, &unexpected):
		return unexpected.Error()
	default:
		return (&analysis.UnexpectedError{Err: err}).Error()
	}
}
