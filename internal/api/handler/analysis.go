package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/portfolio"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
	"github.com/vfg2006/fba-portfolio-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tamanho máximo do corpo JSON de uma análise
const maxJSONBody = 8 << 20

// AnalyzeRows recebe as linhas em JSON e retorna a análise completa
func AnalyzeRows(service portfolio.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request portfolio.AnalyzeRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", err.Error())
			return
		}

		analyze(w, r, service, request)
	}
}

// UploadAnalysis recebe um arquivo .csv ou .xlsx no campo "file"
func UploadAnalysis(service portfolio.Service, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Upload inválido ou acima do tamanho máximo", err.Error())
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Campo file é obrigatório", nil)
			return
		}
		defer file.Close()

		rows, err := portfolio.ReadRows(file, header.Filename)
		if err != nil {
			writeServiceError(w, r, err, nil)
			return
		}

		request := portfolio.AnalyzeRequest{
			Rows:                rows,
			ExistingIdentifiers: splitList(r.FormValue("existing_identifiers")),
		}

		log.ForContext(r.Context()).WithFields(log.Fields{
			"filename": header.Filename,
			"rows":     len(rows),
		}).Info("Upload recebido")

		analyze(w, r, service, request)
	}
}

func analyze(w http.ResponseWriter, r *http.Request, service portfolio.Service, request portfolio.AnalyzeRequest) {
	run, err := service.Analyze(r.Context(), request)
	if err != nil {
		var details any
		if errors.Is(err, portfolio.ErrBatchRejected) && run != nil {
			details = run.Report
		}
		writeServiceError(w, r, err, details)
		return
	}

	writeJSON(w, r, http.StatusCreated, run)
}

// GetAnalysis retorna uma análise com ?sort=&order=asc|desc&tier=
func GetAnalysis(service portfolio.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		opts, ok := viewOptions(w, r)
		if !ok {
			return
		}

		run, err := service.GetRun(r.Context(), id, opts)
		if err != nil {
			writeServiceError(w, r, err, nil)
			return
		}

		writeJSON(w, r, http.StatusOK, run)
	}
}

// ExportAnalysis baixa a análise em ?format=csv|xlsx, com os mesmos filtros de GetAnalysis
func ExportAnalysis(service portfolio.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		format, ok := portfolio.ParseFormat(r.URL.Query().Get("format"))
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrUnsupportedExport, "Formato de exportação inválido, use csv ou xlsx", nil)
			return
		}

		opts, ok := viewOptions(w, r)
		if !ok {
			return
		}

		// Gera em memória para ainda poder responder com erro JSON
		var buf bytes.Buffer
		if err := service.Export(r.Context(), id, format, opts, &buf); err != nil {
			writeServiceError(w, r, err, nil)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="portfolio-%s.%s"`, id, format))
		if _, err := buf.WriteTo(w); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar exportação")
		}
	}
}

func viewOptions(w http.ResponseWriter, r *http.Request) (portfolio.ViewOptions, bool) {
	query := r.URL.Query()
	opts := portfolio.ViewOptions{
		SortBy: query.Get("sort"),
		Tier:   domain.RiskTier(strings.ToLower(query.Get("tier"))),
	}

	switch strings.ToLower(query.Get("order")) {
	case "", "asc":
	case "desc":
		opts.Descending = true
	default:
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Parâmetro order deve ser asc ou desc", nil)
		return opts, false
	}

	return opts, true
}

// writeServiceError traduz AnalysisError para a resposta padronizada
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, details any) {
	var analysisErr *portfolio.AnalysisError
	if errors.As(err, &analysisErr) {
		if apiErrors.StatusFor(analysisErr.Code) >= http.StatusInternalServerError {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao processar análise")
		}
		apiErrors.WriteError(w, analysisErr.Code, analysisErr.Details, details)
		return
	}

	log.ForContext(r.Context()).WithError(err).Error("Erro inesperado ao processar análise")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno do servidor", nil)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar resposta")
	}
}

func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == ' '
	})
}
