package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Analysis ──────────────────────────────────────────────────────
	ErrInvalidSheet   ErrCode = "INVALID_SHEET"
	ErrAnalysisFailed ErrCode = "ANALYSIS_FAILED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Falha na validação. Verifique os dados enviados."

	case ErrFileRequired:
		return "Envie um arquivo no campo 'arquivo'."
	case ErrUnsupportedFile:
		return "Formato não suportado. Use CSV ou XLSX."
	case ErrFileTooLarge:
		return "Arquivo excede o tamanho máximo permitido."

	case ErrInvalidSheet:
		return "A planilha enviada é inválida."
	case ErrAnalysisFailed:
		return "Não foi possível concluir a análise."

	case ErrNotFound:
		return "Recurso não encontrado."

	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente mais tarde."

	case ErrInternal:
		return "Erro interno do servidor."
	default:
		return "Ocorreu um erro inesperado."
	}
}
