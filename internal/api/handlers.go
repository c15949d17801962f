// Package api exposes the conversation actions over HTTP. Sessions are
// identified by an opaque cookie token; all state lives server-side.
package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/entities"
	"github.com/loquilab/loqui-server/domain/repositories"
	"github.com/loquilab/loqui-server/internal/registry"
	"github.com/loquilab/loqui-server/internal/session"
	"github.com/loquilab/loqui-server/usecase"
)

const (
	sessionCookieName = "session_id"
	maxAudioUpload    = 15 << 20
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	conversations *usecase.ConversationService
	analysis      *usecase.AnalysisService
	reports       *usecase.ReportService
	store         *session.Store
	registry      *registry.Registry
	logger        *zap.Logger
}

// NewServer creates the handler set.
func NewServer(
	conversations *usecase.ConversationService,
	analysis *usecase.AnalysisService,
	reports *usecase.ReportService,
	store *session.Store,
	reg *registry.Registry,
	logger *zap.Logger,
) *Server {
	return &Server{
		conversations: conversations,
		analysis:      analysis,
		reports:       reports,
		store:         store,
		registry:      reg,
		logger:        logger,
	}
}

// initialize starts or restarts the conversation for this session, creating
// the session when the cookie is missing or stale.
func (s *Server) initialize(c echo.Context) error {
	var req InitializeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	sess := s.ensureSession(c)
	sess.Lock()
	defer sess.Unlock()

	if req.CustomRole != "" {
		sess.CustomScenario = &entities.Scenario{
			Context: req.CustomContext,
			Role:    req.CustomRole,
		}
	} else {
		sess.CustomScenario = nil
	}

	result, err := s.conversations.Initialize(c.Request().Context(), sess, req.Language, req.Scenario, req.Level)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownScenario) {
			return badRequest(c, "Unknown scenario")
		}
		s.logger.Error("Initialize failed", zap.Error(err))
		return upstreamFailure(c, err)
	}

	audio, mime := audioFields(result.Audio)
	return c.JSON(http.StatusOK, InitializeResponse{
		OK:             true,
		Intro:          result.Intro,
		IntroAudio:     audio,
		IntroAudioMIME: mime,
		QuickReplies:   s.conversations.QuickReplies(c.Request().Context(), result.Intro, sess.Language),
		State:          []entities.Pair{},
	})
}

// sendMessage handles a typed user turn.
func (s *Server) sendMessage(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	sess.Lock()
	defer sess.Unlock()

	return s.completeTurn(c, sess, req.Text, "")
}

// uploadAudio handles a spoken user turn: transcription first, then the
// same turn flow as a typed message. A failed transcription is reported as
// an empty transcription, not an error.
func (s *Server) uploadAudio(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "Audio file is required.")
	}
	if file.Size > maxAudioUpload {
		return badRequest(c, "Audio file is too large.")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Audio file is not readable.")
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		return badRequest(c, "Audio file is not readable.")
	}

	sess.Lock()
	defer sess.Unlock()

	transcription := s.conversations.Transcribe(c.Request().Context(), sess.Language, audio, file.Filename)
	if transcription == "" {
		return c.JSON(http.StatusOK, TurnResponse{
			OK:    true,
			State: sess.Transcript.Pairs(),
		})
	}

	return s.completeTurn(c, sess, transcription, transcription)
}

// completeTurn runs the shared turn flow: append the utterance, fetch the
// reply, then enrich with narration, conclusion state and quick replies.
// Callers hold the session lock.
func (s *Server) completeTurn(c echo.Context, sess *entities.Session, utterance, transcription string) error {
	ctx := c.Request().Context()

	reply, pairs, err := s.conversations.SubmitTurn(ctx, sess, utterance)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyInput):
			return badRequest(c, "Text is required.")
		case errors.Is(err, usecase.ErrNotInitialized):
			return badRequest(c, "No active session. Initialize first.")
		default:
			return upstreamFailure(c, err)
		}
	}

	audio, mime := audioFields(s.conversations.Speak(ctx, reply, sess.Language))
	return c.JSON(http.StatusOK, TurnResponse{
		OK:             true,
		Transcription:  transcription,
		Reply:          reply,
		ReplyAudio:     audio,
		ReplyAudioMIME: mime,
		Concluded:      s.analysis.Concluded(ctx, sess),
		QuickReplies:   s.conversations.QuickReplies(ctx, reply, sess.Language),
		State:          pairs,
	})
}

// quickReplies suggests short answers for an arbitrary message. Works
// without a session so the client can prefetch suggestions.
func (s *Server) quickReplies(c echo.Context) error {
	var req QuickRepliesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	replies := s.conversations.QuickReplies(c.Request().Context(), req.Text, req.Language)
	if replies == nil {
		replies = []string{}
	}
	return c.JSON(http.StatusOK, QuickRepliesResponse{OK: true, QuickReplies: replies})
}

// translate renders free text in the target language with narration.
func (s *Server) translate(c echo.Context) error {
	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	translated, synthesis, err := s.conversations.TranslateStandalone(c.Request().Context(), req.Text, req.Language)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyInput) {
			return badRequest(c, "Text is required.")
		}
		return upstreamFailure(c, err)
	}

	audio, mime := audioFields(synthesis)
	return c.JSON(http.StatusOK, TranslateResponse{
		OK:          true,
		Translation: translated,
		Audio:       audio,
		AudioMIME:   mime,
	})
}

// proposeAnswer suggests the learner's next utterance.
func (s *Server) proposeAnswer(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	var req ProposeAnswerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	sess.Lock()
	defer sess.Unlock()

	proposal, err := s.conversations.ProposeAnswer(c.Request().Context(), sess, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoTurns):
			return badRequest(c, "Nothing to answer yet.")
		case errors.Is(err, usecase.ErrNotInitialized):
			return badRequest(c, "No active session. Initialize first.")
		default:
			return upstreamFailure(c, err)
		}
	}

	audio, mime := audioFields(proposal.Audio)
	return c.JSON(http.StatusOK, ProposeAnswerResponse{
		OK:               true,
		Suggestion:       proposal.Suggestion,
		SuggestionNative: proposal.SuggestionNative,
		Audio:            audio,
		AudioMIME:        mime,
	})
}

// toggleTranslation flips the translated transcript view.
func (s *Server) toggleTranslation(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	var req ToggleTranslationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	sess.Lock()
	defer sess.Unlock()

	pairs, enabled, err := s.conversations.ToggleTranslation(c.Request().Context(), sess, req.Language)
	if err != nil {
		return upstreamFailure(c, err)
	}
	if pairs == nil {
		pairs = []entities.Pair{}
	}
	return c.JSON(http.StatusOK, ToggleTranslationResponse{
		OK:      true,
		Enabled: enabled,
		State:   pairs,
	})
}

// analyze produces the linguistic feedback on the learner's turns.
func (s *Server) analyze(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}

	sess.Lock()
	defer sess.Unlock()

	analysis, err := s.analysis.Analyze(c.Request().Context(), sess, req.Language)
	if err != nil {
		if errors.Is(err, usecase.ErrNoTurns) {
			return badRequest(c, "Nothing to analyze yet.")
		}
		return upstreamFailure(c, err)
	}

	return c.JSON(http.StatusOK, AnalyzeResponse{OK: true, Analysis: analysis})
}

// generatePDF streams the session export. Summary and analysis are best
// effort; a collaborator failure drops the section rather than the export.
func (s *Server) generatePDF(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	sess.Lock()
	defer sess.Unlock()

	ctx := c.Request().Context()

	summary, err := s.analysis.Summarize(ctx, sess)
	if err != nil {
		if errors.Is(err, usecase.ErrNoTurns) {
			return badRequest(c, "Nothing to export yet.")
		}
		s.logger.Warn("Summary failed, exporting without it", zap.Error(err))
		summary = ""
	}

	analysisText, err := s.analysis.Analyze(ctx, sess, registry.DefaultLanguage)
	if err != nil {
		s.logger.Warn("Analysis failed, exporting without it", zap.Error(err))
		analysisText = ""
	}

	report, err := s.reports.BuildReport(ctx, sess, summary, analysisText)
	if err != nil {
		return upstreamFailure(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=gespraech-%s.pdf", time.Now().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "application/pdf", report)
}

// reset clears the visible conversation but keeps the scenario preamble,
// so the learner can start over without re-initializing.
func (s *Server) reset(c echo.Context) error {
	sess, err := s.currentSession(c)
	if err != nil {
		return badRequest(c, "No active session. Initialize first.")
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Transcript.Reset(sess.Transcript.Preamble()...)
	sess.ResetDerivedState()
	sess.Touch()

	return c.JSON(http.StatusOK, ResetResponse{OK: true, State: []entities.Pair{}})
}

// languages lists the selectable conversation languages.
func (s *Server) languages(c echo.Context) error {
	langs := s.registry.Languages()
	out := make([]LanguageInfo, 0, len(langs))
	for _, l := range langs {
		out = append(out, LanguageInfo{Key: l.Key, Label: l.Label, Flag: l.Flag})
	}
	return c.JSON(http.StatusOK, out)
}

// scenarios lists the available scenario names.
func (s *Server) scenarios(c echo.Context) error {
	return c.JSON(http.StatusOK, s.registry.ScenarioNames())
}

// health reports liveness and the live session count.
func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"service":  "loqui-server",
		"sessions": s.store.Len(),
	})
}

// ensureSession resolves the cookie token to a live session, creating one
// and refreshing the cookie when needed.
func (s *Server) ensureSession(c echo.Context) *entities.Session {
	var token string
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		token = cookie.Value
	}

	token = s.store.GetOrCreate(token, registry.DefaultLanguage)
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	sess, err := s.store.Get(token)
	if err != nil {
		// Cannot happen: GetOrCreate just guaranteed a live session.
		s.logger.Error("Session vanished after creation", zap.String("token", token))
		sess = entities.NewSession(token, registry.DefaultLanguage)
	}
	return sess
}

// currentSession resolves the cookie token without creating a session.
func (s *Server) currentSession(c echo.Context) (*entities.Session, error) {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return nil, session.ErrNotFound
	}
	return s.store.Get(cookie.Value)
}

func audioFields(synthesis *repositories.Synthesis) (string, string) {
	if synthesis == nil {
		return "", ""
	}
	return base64.StdEncoding.EncodeToString(synthesis.Audio), synthesis.MIMEType
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func upstreamFailure(c echo.Context, err error) error {
	var upstreamErr *usecase.UpstreamError
	if errors.As(err, &upstreamErr) {
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: fmt.Sprintf("The %s service is temporarily unavailable.", upstreamErr.Service),
		})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal error."})
}
