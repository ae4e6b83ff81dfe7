package portfolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/fba-portfolio-api/infrastructure/repository"
	"github.com/vfg2006/fba-portfolio-api/infrastructure/repository/mocks"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/aggregating"
	"github.com/vfg2006/fba-portfolio-api/internal/usecases/analyzing"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

const runID = "AbC123xyz789"

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo repository.AnalysisRepository, maxRows int) *service {
	return &service{
		repository: repo,
		engine:     analyzing.NewEngine(maxRows, domain.DefaultThresholds()),
		delimiter:  ',',
		now:        func() time.Time { return fixedNow },
		generateID: func() (string, error) { return runID, nil },
	}
}

func sampleRows() []domain.RawRow {
	return []domain.RawRow{
		{"asin": "B0HEALTHY1", "name": "Saudável", "price": "40", "cost": "8", "velocity": "300", "initial_order": "150"},
		{"asin": "B0LOSS0001", "name": "Prejuízo", "price": "30", "cost": "25", "velocity": "100"},
		{"asin": "SHORT", "name": "Inválido", "price": "30", "cost": "10", "velocity": "100"},
		{"asin": "B0IDLE0001", "name": "Parado", "price": "50", "cost": "20", "velocity": "0"},
	}
}

func storedRun(t *testing.T) *domain.AnalysisRun {
	t.Helper()
	out := analyzing.NewEngine(0, domain.DefaultThresholds()).Run(sampleRows(), nil)
	return &domain.AnalysisRun{ID: runID, CreatedAt: fixedNow, AnalysisOutput: out}
}

func requireAnalysisError(t *testing.T, err error, target error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, target), "esperado %v, obtido %v", target, err)

	var analysisErr *AnalysisError
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, code, analysisErr.Code)
}

func TestService_Analyze(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAnalysisRepository(ctrl)
	svc := newTestService(mockRepo, 500)

	tests := []struct {
		name     string
		request  AnalyzeRequest
		setup    func()
		wantErr  error
		wantCode string
		validate func(t *testing.T, run *domain.AnalysisRun)
	}{
		{
			name:    "Lote válido é analisado e gravado",
			request: AnalyzeRequest{Rows: sampleRows()},
			setup: func() {
				mockRepo.EXPECT().ListIdentifiers(gomock.Any()).Return([]string{}, nil)
				mockRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, run *domain.AnalysisRun) error {
						assert.Equal(t, runID, run.ID)
						assert.Len(t, run.Results, 3)
						return nil
					})
			},
			validate: func(t *testing.T, run *domain.AnalysisRun) {
				assert.Equal(t, runID, run.ID)
				assert.Equal(t, fixedNow, run.CreatedAt)
				assert.Equal(t, 3, run.Report.Accepted)
				assert.Empty(t, run.Report.Duplicates)
				assert.Equal(t, 3, run.Summary.TotalProducts)
			},
		},
		{
			name: "Identificadores armazenados e do pedido entram nos duplicados",
			request: AnalyzeRequest{
				Rows:                sampleRows(),
				ExistingIdentifiers: []string{"b0idle0001"},
			},
			setup: func() {
				mockRepo.EXPECT().ListIdentifiers(gomock.Any()).Return([]string{"B0HEALTHY1"}, nil)
				mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			validate: func(t *testing.T, run *domain.AnalysisRun) {
				assert.Equal(t, []string{"B0HEALTHY1", "B0IDLE0001"}, run.Report.Duplicates)
				assert.Len(t, run.Results, 3)
			},
		},
		{
			name:     "Lote vazio",
			request:  AnalyzeRequest{},
			setup:    func() {},
			wantErr:  ErrEmptyBatch,
			wantCode: apiErrors.ErrMissingRequiredData,
		},
		{
			name:    "Falha ao listar identificadores",
			request: AnalyzeRequest{Rows: sampleRows()},
			setup: func() {
				mockRepo.EXPECT().ListIdentifiers(gomock.Any()).Return(nil, errors.New("conexão recusada"))
			},
			wantErr:  ErrDatabaseOperation,
			wantCode: apiErrors.ErrDatabaseOperation,
		},
		{
			name:    "Falha ao gravar",
			request: AnalyzeRequest{Rows: sampleRows()},
			setup: func() {
				mockRepo.EXPECT().ListIdentifiers(gomock.Any()).Return(nil, nil)
				mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disco cheio"))
			},
			wantErr:  ErrDatabaseOperation,
			wantCode: apiErrors.ErrDatabaseOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			run, err := svc.Analyze(context.Background(), tt.request)

			if tt.wantErr != nil {
				requireAnalysisError(t, err, tt.wantErr, tt.wantCode)
				assert.Nil(t, run)
				return
			}

			require.NoError(t, err)
			tt.validate(t, run)
		})
	}
}

func TestService_Analyze_LoteRejeitado(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAnalysisRepository(ctrl)
	mockRepo.EXPECT().ListIdentifiers(gomock.Any()).Return(nil, nil)
	// Save não deve ser chamado

	rows := make([]domain.RawRow, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, domain.RawRow{
			"asin": fmt.Sprintf("B0%08d", i), "name": "Produto", "price": "20", "cost": "5", "velocity": "10",
		})
	}

	run, err := newTestService(mockRepo, 2).Analyze(context.Background(), AnalyzeRequest{Rows: rows})

	requireAnalysisError(t, err, ErrBatchRejected, apiErrors.ErrBatchRejected)
	require.NotNil(t, run)
	assert.Empty(t, run.ID)
	assert.True(t, run.Report.Rejected)
	assert.Empty(t, run.Results)
	assert.Contains(t, err.Error(), "máximo permitido é 2")
}

func TestService_GetRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAnalysisRepository(ctrl)
	svc := newTestService(mockRepo, 500)

	tests := []struct {
		name     string
		id       string
		opts     ViewOptions
		setup    func()
		wantErr  error
		wantCode string
		wantRows []int
	}{
		{
			name: "Ordem original por padrão",
			id:   runID,
			setup: func() {
				mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(storedRun(t), nil)
			},
			wantRows: []int{0, 1, 3},
		},
		{
			name: "Ordenado por health score decrescente",
			id:   runID,
			opts: ViewOptions{SortBy: "healthScore", Descending: true},
			setup: func() {
				mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(storedRun(t), nil)
			},
			wantRows: []int{0, 3, 1},
		},
		{
			name: "Filtrado por tier",
			id:   runID,
			opts: ViewOptions{Tier: domain.TierCritical},
			setup: func() {
				mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(storedRun(t), nil)
			},
			wantRows: []int{1, 3},
		},
		{
			name:     "Campo de ordenação desconhecido",
			id:       runID,
			opts:     ViewOptions{SortBy: "lucro"},
			setup:    func() {},
			wantErr:  ErrInvalidSortField,
			wantCode: apiErrors.ErrInvalidSortField,
		},
		{
			name:     "Tier desconhecido",
			id:       runID,
			opts:     ViewOptions{Tier: "amarelo"},
			setup:    func() {},
			wantErr:  ErrInvalidTier,
			wantCode: apiErrors.ErrInvalidTier,
		},
		{
			name:     "ID inválido",
			id:       "../etc",
			setup:    func() {},
			wantErr:  ErrInvalidAnalysisID,
			wantCode: apiErrors.ErrInvalidRequest,
		},
		{
			name: "Análise inexistente",
			id:   runID,
			setup: func() {
				mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(nil, nil)
			},
			wantErr:  ErrAnalysisNotFound,
			wantCode: apiErrors.ErrAnalysisNotFound,
		},
		{
			name: "Falha no banco",
			id:   runID,
			setup: func() {
				mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(nil, errors.New("timeout"))
			},
			wantErr:  ErrDatabaseOperation,
			wantCode: apiErrors.ErrDatabaseOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			run, err := svc.GetRun(context.Background(), tt.id, tt.opts)

			if tt.wantErr != nil {
				requireAnalysisError(t, err, tt.wantErr, tt.wantCode)
				return
			}

			require.NoError(t, err)
			rows := make([]int, 0, len(run.Results))
			for _, r := range run.Results {
				rows = append(rows, r.Product.RowIndex)
			}
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, 3, run.Summary.TotalProducts)
		})
	}
}

func TestService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAnalysisRepository(ctrl)
	svc := newTestService(mockRepo, 500)

	t.Run("CSV com filtro de tier", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(storedRun(t), nil)

		var buf bytes.Buffer
		err := svc.Export(context.Background(), runID, FormatCSV, ViewOptions{Tier: domain.TierHealthy}, &buf)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, strings.Join(aggregating.ExportColumns, ","), lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "B0HEALTHY1,"))
	})

	t.Run("XLSX", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), runID).Return(storedRun(t), nil)

		var buf bytes.Buffer
		err := svc.Export(context.Background(), runID, FormatXLSX, ViewOptions{}, &buf)
		require.NoError(t, err)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(aggregating.ExportSheet)
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("Formato desconhecido", func(t *testing.T) {
		err := svc.Export(context.Background(), runID, Format("pdf"), ViewOptions{}, &bytes.Buffer{})
		requireAnalysisError(t, err, ErrInvalidFormat, apiErrors.ErrUnsupportedExport)
	})
}

func TestService_PurgeExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAnalysisRepository(ctrl)
	svc := newTestService(mockRepo, 500)
	before := fixedNow.AddDate(0, 0, -30)

	mockRepo.EXPECT().DeleteOlderThan(gomock.Any(), before).Return(int64(4), nil)
	deleted, err := svc.PurgeExpired(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	mockRepo.EXPECT().DeleteOlderThan(gomock.Any(), before).Return(int64(0), errors.New("timeout"))
	_, err = svc.PurgeExpired(context.Background(), before)
	requireAnalysisError(t, err, ErrDatabaseOperation, apiErrors.ErrDatabaseOperation)
}

func TestService_ComRepositorioEmMemoria(t *testing.T) {
	cfg := &config.Config{
		Analysis: config.Analysis{MaxRows: 500, ExportDelimiter: ";"},
		Scoring:  config.NewScoring(domain.DefaultThresholds()),
	}
	svc := NewService(repository.NewMemoryAnalysisRepository(), cfg)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, AnalyzeRequest{Rows: sampleRows()})
	require.NoError(t, err)
	assert.Empty(t, first.Report.Duplicates)

	// O segundo lote enxerga os produtos do primeiro
	second, err := svc.Analyze(ctx, AnalyzeRequest{Rows: sampleRows()[:1]})
	require.NoError(t, err)
	assert.Equal(t, []string{"B0HEALTHY1"}, second.Report.Duplicates)
	assert.NotEqual(t, first.ID, second.ID)

	stored, err := svc.GetRun(ctx, first.ID, ViewOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.Results, stored.Results)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, first.ID, FormatCSV, ViewOptions{}, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "identifier;name;category;"))

	deleted, err := svc.PurgeExpired(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.GetRun(ctx, first.ID, ViewOptions{})
	assert.True(t, errors.Is(err, ErrAnalysisNotFound))
}
