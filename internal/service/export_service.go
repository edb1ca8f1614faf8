package service

import (
	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/export"
)

// ExportService writes the current portfolio view to a PDF file.
// It only reads the portfolio; a failed export leaves the state untouched.
type ExportService struct {
	portfolio *PortfolioService
	renderer  *export.PDFRenderer
	dir       string
	logger    *zap.Logger
}

// NewExportService creates an ExportService writing into dir.
func NewExportService(portfolio *PortfolioService, renderer *export.PDFRenderer, dir string, logger *zap.Logger) *ExportService {
	return &ExportService{
		portfolio: portfolio,
		renderer:  renderer,
		dir:       dir,
		logger:    logger,
	}
}

// ExportPDF renders the current view and returns the written file path.
// Errors wrap apperrors.ErrExport and are logged here.
func (s *ExportService) ExportPDF() (string, error) {
	view := s.portfolio.View()

	path, err := s.renderer.WriteFile(view, s.dir)
	if err != nil {
		s.logger.Error("exporting portfolio", zap.String("dir", s.dir), zap.Error(err))
		return "", err
	}

	s.logger.Info("portfolio exported", zap.String("path", path), zap.Int("holdings", len(view.Rows)))
	return path, nil
}
