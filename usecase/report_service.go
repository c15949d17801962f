package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/entities"
	"github.com/loquilab/loqui-server/domain/repositories"
	"github.com/loquilab/loqui-server/internal/registry"
	"github.com/loquilab/loqui-server/internal/textutil"
)

const (
	userLabel      = "Lernende Person"
	assistantLabel = "Sprachassistent"
	germanCode     = "de"
)

// ReportService renders the session export as a PDF document. The report
// is built entirely in memory; nothing touches the filesystem.
type ReportService struct {
	translator repositories.Translator
	registry   *registry.Registry
	logger     *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(translator repositories.Translator, reg *registry.Registry, logger *zap.Logger) *ReportService {
	return &ReportService{
		translator: translator,
		registry:   reg,
		logger:     logger,
	}
}

// BuildReport renders the conversation protocol. The protocol section is
// always in German; when the session language is not German the turns are
// translated and the original transcript is appended as a second section.
// The analysis section is included only when analysis text is present.
func (s *ReportService) BuildReport(ctx context.Context, sess *entities.Session, summary, analysisText string) ([]byte, error) {
	turns := sess.Transcript.Turns()
	if len(turns) == 0 {
		return nil, ErrNoTurns
	}

	lang := s.registry.LanguageOrDefault(sess.Language)

	germanTurns := turns
	if lang.Code != germanCode {
		translated, err := s.translateTurns(ctx, turns)
		if err != nil {
			return nil, err
		}
		germanTurns = translated
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// The cp1252 translator covers Latin scripts only; non-Latin content
	// (ukrainian, macedonian, hindi) degrades to replacement characters in
	// the second transcript section. TODO: embed a UTF-8 font for those.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Seite %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Gesprächsexport"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Exportdatum: "+time.Now().Format("02.01.2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Sprache: "+lang.Label), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if summary != "" {
		s.sectionHeading(pdf, tr, "Übersicht")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, tr(textutil.StripEmojis(summary)), "", "L", false)
		pdf.Ln(4)
	}

	s.sectionHeading(pdf, tr, "Gesprächsprotokoll (Deutsch)")
	s.writeTurns(pdf, tr, germanTurns)

	if lang.Code != germanCode {
		pdf.Ln(4)
		s.sectionHeading(pdf, tr, "Gesprächsprotokoll ("+lang.Label+")")
		s.writeTurns(pdf, tr, turns)
	}

	if analysisText != "" {
		pdf.Ln(4)
		s.sectionHeading(pdf, tr, "Sprachliche Analyse")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, tr(textutil.StripEmojis(analysisText)), "", "L", false)
	}

	if tally := sess.Tally(); tally.Size() > 0 {
		pdf.Ln(4)
		s.sectionHeading(pdf, tr, "Wortschatz")
		pdf.SetFont("Helvetica", "", 11)
		s.writeLemmas(pdf, tr, "Nomen", tally.SortedNouns())
		s.writeLemmas(pdf, tr, "Verben", tally.SortedVerbs())
		s.writeLemmas(pdf, tr, "Adjektive", tally.SortedAdjectives())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	s.logger.Info("Report generated",
		zap.String("token", sess.Token),
		zap.Int("bytes", buf.Len()),
		zap.Int("turns", len(turns)))

	return buf.Bytes(), nil
}

func (s *ReportService) sectionHeading(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (s *ReportService) writeTurns(pdf *gofpdf.Fpdf, tr func(string) string, turns []entities.Message) {
	for _, m := range turns {
		label := assistantLabel
		if m.Role == entities.RoleUser {
			label = userLabel
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, tr(label+":"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, tr(textutil.StripEmojis(m.Content)), "", "L", false)
		pdf.Ln(2)
	}
}

func (s *ReportService) writeLemmas(pdf *gofpdf.Fpdf, tr func(string) string, label string, lemmas []string) {
	if len(lemmas) == 0 {
		return
	}
	pdf.MultiCell(0, 5.5, tr(label+": "+strings.Join(lemmas, ", ")), "", "L", false)
}

func (s *ReportService) translateTurns(ctx context.Context, turns []entities.Message) ([]entities.Message, error) {
	out := make([]entities.Message, len(turns))
	for i, m := range turns {
		translated, err := s.translator.Translate(ctx, m.Content, germanCode)
		if err != nil {
			return nil, upstream("translation", err)
		}
		out[i] = entities.Message{Role: m.Role, Content: translated}
	}
	return out, nil
}
