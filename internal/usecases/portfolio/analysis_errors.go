package portfolio

import (
	"errors"
	"fmt"
)

// Erros específicos do serviço de portfólio
var (
	// Erros de validação
	ErrEmptyBatch        = errors.New("batch has no rows")
	ErrBatchRejected     = errors.New("batch rejected")
	ErrInvalidSortField  = errors.New("invalid sort field")
	ErrInvalidTier       = errors.New("invalid risk tier")
	ErrInvalidFormat     = errors.New("invalid export format")
	ErrInvalidAnalysisID = errors.New("invalid analysis id")

	// Erros de upload
	ErrUnsupportedFile = errors.New("unsupported upload file")
	ErrUnreadableFile  = errors.New("unreadable upload file")

	// Erros de consulta
	ErrAnalysisNotFound = errors.New("analysis not found")

	// Erros de banco de dados
	ErrDatabaseOperation = errors.New("database operation error")
	ErrGenerateID        = errors.New("error generating analysis id")

	// Erros de exportação
	ErrExport = errors.New("error writing export")
)

// AnalysisError é um erro com contexto adicional para análises
type AnalysisError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	AnalysisID string // ID da análise envolvida (quando aplicável)
	Details    string // Detalhes adicionais
}

// Error implementa a interface error
func (e *AnalysisError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError cria um novo AnalysisError
func NewAnalysisError(err error, code string, details string) *AnalysisError {
	return &AnalysisError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

// NewAnalysisErrorWithID cria um novo AnalysisError com ID da análise
func NewAnalysisErrorWithID(err error, code string, analysisID string, details string) *AnalysisError {
	return &AnalysisError{
		Err:        err,
		Code:       code,
		AnalysisID: analysisID,
		Details:    details,
	}
}
