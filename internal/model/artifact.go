package model

import "time"

// Download file names of the generated artifacts.
const (
	ReportFilename            = "relatorio_alunos.pdf"
	DistributionChartFilename = "distribuicao.png"
	PerformanceChartFilename  = "desempenho.png"
)

// ChartImage is an encoded PNG chart.
type ChartImage struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// Charts holds the two charts of a run.
type Charts struct {
	Distribution ChartImage
	Performance  ChartImage
}

// Ordered returns the charts in report order: distribution first.
func (c Charts) Ordered() []ChartImage {
	return []ChartImage{c.Distribution, c.Performance}
}

// ReportDocument is a composed PDF report.
type ReportDocument struct {
	Data        []byte
	Pages       int
	GeneratedAt time.Time
}

// Artifact identifies a downloadable output of a successful run.
type Artifact string

const (
	ArtifactReport       Artifact = "pdf"
	ArtifactDistribution Artifact = "grafico_pizza"
	ArtifactPerformance  Artifact = "grafico_barras"
)

// Artifacts lists every artifact stored per run.
var Artifacts = []Artifact{ArtifactReport, ArtifactDistribution, ArtifactPerformance}

// Filename returns the attachment name used on download.
func (a Artifact) Filename() string {
	switch a {
	case ArtifactReport:
		return ReportFilename
	case ArtifactDistribution:
		return DistributionChartFilename
	case ArtifactPerformance:
		return PerformanceChartFilename
	default:
		return string(a)
	}
}

// ContentType returns the MIME type of the artifact.
func (a Artifact) ContentType() string {
	if a == ArtifactReport {
		return "application/pdf"
	}
	return "image/png"
}

// UnavailableMessage is shown when the artifact was never generated or expired.
func (a Artifact) UnavailableMessage() string {
	if a == ArtifactReport {
		return "PDF não disponível"
	}
	return "Imagem não disponível"
}
