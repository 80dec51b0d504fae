package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/labinsight/labinsight-api/internal/application"
	appanalysis "github.com/labinsight/labinsight-api/internal/application/analysis"
	appchat "github.com/labinsight/labinsight-api/internal/application/chat"
	appfiles "github.com/labinsight/labinsight-api/internal/application/files"
	appprivacy "github.com/labinsight/labinsight-api/internal/application/privacy"
	domai "github.com/labinsight/labinsight-api/internal/domain/ai"
	"github.com/labinsight/labinsight-api/internal/domain/chat"
	"github.com/labinsight/labinsight-api/internal/domain/history"
	"github.com/labinsight/labinsight-api/internal/domain/profile"
	"github.com/labinsight/labinsight-api/internal/domain/report"
	"github.com/labinsight/labinsight-api/internal/export"
	"github.com/labinsight/labinsight-api/internal/middleware"
)

const maxUploadBytes = 10 << 20

type Router struct {
	analysisSvc *appanalysis.Service
	chatSvc     *appchat.Service
	privacySvc  *appprivacy.Service
	filesSvc    *appfiles.Service
	profiles    profile.Repository
}

type Deps struct {
	Analysis  *appanalysis.Service
	Chat      *appchat.Service
	Privacy   *appprivacy.Service
	Files     *appfiles.Service
	Profiles  profile.Repository
	JWTSecret []byte
	Logger    *zerolog.Logger
	Health    map[string]middleware.HealthChecker
}

func NewRouter(deps Deps) http.Handler {
	r := &Router{
		analysisSvc: deps.Analysis,
		chatSvc:     deps.Chat,
		privacySvc:  deps.Privacy,
		filesSvc:    deps.Files,
		profiles:    deps.Profiles,
	}

	mux := chi.NewRouter()
	if deps.Logger != nil {
		mux.Use(middleware.Logger(deps.Logger))
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info"},
	}))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.OptionalAuth(deps.JWTSecret))
	mux.Use(middleware.RateLimit(30, 1))

	mux.Get("/health", middleware.HealthHandler(deps.Health))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Post("/chat", r.wrap(r.handleChat))

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.RequireAuth)
		rt.Get("/results", r.wrap(r.handleResults))
		rt.Get("/results/trend", r.wrap(r.handleTrend))
		rt.Get("/results/{id}", r.wrap(r.handleResult))
		rt.Get("/results/{id}/export", r.wrap(r.handleExport))
		rt.Get("/messages", r.wrap(r.handleMessages))
		rt.Post("/files", r.wrap(r.handleUpload))
		rt.Get("/files", r.wrap(r.handleFiles))
		rt.Get("/profile", r.wrap(r.handleGetProfile))
		rt.Put("/profile", r.wrap(r.handlePutProfile))
		rt.Delete("/data", r.wrap(r.handleDeleteData))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain error kinds onto HTTP statuses. Raw upstream error
// text is logged, never shown to end users.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var ve *application.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Msg)
		case errors.Is(err, domai.ErrQuotaExceeded):
			middleware.IncrementUpstreamFailures()
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		case errors.Is(err, domai.ErrUpstream):
			middleware.IncrementUpstreamFailures()
			zerolog.Ctx(req.Context()).Error().Err(err).Msg("model call failed")
			writeError(w, http.StatusBadGateway, "Analysis service is temporarily unavailable")
		default:
			zerolog.Ctx(req.Context()).Error().Err(err).Msg("request failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /analyze
// Body: {"reportText": "...", "inputType": "manual|file", "userAge": n, "userGender": "male|female", "language": "ar|en"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ReportText string `json:"reportText"`
		InputType  string `json:"inputType"`
		UserAge    *int   `json:"userAge"`
		UserGender string `json:"userGender"`
		Language   string `json:"language"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return application.Validation("invalid request body")
	}
	if err := middleware.ValidateLanguage(body.Language); err != nil {
		return application.Validation(err.Error())
	}
	if err := middleware.ValidateGender(body.UserGender); err != nil {
		return application.Validation(err.Error())
	}
	if err := middleware.ValidateAge(body.UserAge); err != nil {
		return application.Validation(err.Error())
	}
	if err := middleware.ValidateInputType(body.InputType); err != nil {
		return application.Validation(err.Error())
	}

	cmd := appanalysis.AnalyzeCommand{
		UserID:     middleware.GetUserFromContext(req.Context()),
		ReportText: body.ReportText,
		InputType:  body.InputType,
		UserAge:    body.UserAge,
		Language:   body.Language,
	}
	if body.UserGender != "" {
		g := strings.ToLower(body.UserGender)
		cmd.UserGender = &g
	}

	res, err := r.analysisSvc.Analyze(req.Context(), cmd)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	if !res.IsStructured {
		middleware.IncrementFallbacks()
	}
	return writeJSON(w, res)
}

// POST /chat
// Body: {"message": "...", "language": "ar|en", "analysisResultId": "...", "conversationHistory": [{"message_type": "user|assistant", "content": "..."}]}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message             string      `json:"message"`
		Language            string      `json:"language"`
		AnalysisResultID    string      `json:"analysisResultId"`
		ConversationHistory []chat.Turn `json:"conversationHistory"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return application.Validation("invalid request body")
	}
	if err := middleware.ValidateLanguage(body.Language); err != nil {
		return application.Validation(err.Error())
	}

	reply, err := r.chatSvc.Send(req.Context(), appchat.ChatCommand{
		UserID:           middleware.GetUserFromContext(req.Context()),
		Message:          body.Message,
		Language:         body.Language,
		AnalysisResultID: body.AnalysisResultID,
		History:          body.ConversationHistory,
	})
	if err != nil {
		return err
	}

	middleware.IncrementChats()
	return writeJSON(w, map[string]string{"response": reply})
}

// GET /results?limit=20
func (r *Router) handleResults(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.History(req.Context(), userID, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*report.AnalysisResult{}
	}
	return writeJSON(w, list)
}

// GET /results/{id}
func (r *Router) handleResult(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	id := report.ResultID(chi.URLParam(req, "id"))

	rec, err := r.analysisSvc.Get(req.Context(), userID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "result not found")
		return nil
	}
	return writeJSON(w, rec)
}

// GET /results/{id}/export
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	id := report.ResultID(chi.URLParam(req, "id"))

	rec, err := r.analysisSvc.Get(req.Context(), userID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "result not found")
		return nil
	}

	analysis := report.Fallback(rec.RawOutput, rec.Language)
	if rec.Structured != nil {
		analysis = *rec.Structured
	}
	return writeJSON(w, map[string]any{
		"resultId": rec.ID,
		"pages":    export.Document(analysis, rec.Language),
	})
}

// GET /results/trend?test=Hemoglobin
// Buckets the change of one named test across the user's stored analyses.
func (r *Router) handleTrend(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	testName := req.URL.Query().Get("test")
	if testName == "" {
		return application.Validation("test name is required")
	}

	list, err := r.analysisSvc.History(req.Context(), userID, 50)
	if err != nil {
		return err
	}

	// History is newest first; walk backwards for chronological order.
	var series []history.Observation
	for i := len(list) - 1; i >= 0; i-- {
		rec := list[i]
		if rec.Structured == nil {
			continue
		}
		for _, t := range rec.Structured.TestResults {
			if t.Name == testName {
				series = append(series, history.Observation{
					Name:    t.Name,
					Value:   t.Value,
					TakenAt: rec.CreatedAt,
				})
			}
		}
	}

	return writeJSON(w, map[string]any{
		"test":         testName,
		"trend":        history.Compute(series),
		"observations": len(series),
	})
}

// GET /messages?analysisResultId=&limit=
func (r *Router) handleMessages(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	var analysisID *report.ResultID
	if v := req.URL.Query().Get("analysisResultId"); v != "" {
		id := report.ResultID(v)
		analysisID = &id
	}

	list, err := r.chatSvc.Recent(req.Context(), userID, analysisID, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*chat.Message{}
	}
	return writeJSON(w, list)
}

// POST /files (multipart: file, extractedText, analysisResultId)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return application.Validation("invalid multipart body")
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return application.Validation("file is required")
	}
	defer file.Close()

	stored, err := r.filesSvc.Store(req.Context(), appfiles.UploadCommand{
		UserID:           middleware.GetUserFromContext(req.Context()),
		FileName:         header.Filename,
		ContentType:      header.Header.Get("Content-Type"),
		Size:             header.Size,
		Body:             file,
		ExtractedText:    req.FormValue("extractedText"),
		AnalysisResultID: req.FormValue("analysisResultId"),
	})
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, stored)
}

// GET /files?limit=
func (r *Router) handleFiles(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.filesSvc.ListByUser(req.Context(), userID, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /profile
func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	p, err := r.profiles.Get(req.Context(), userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = profile.Default(userID)
	}
	return writeJSON(w, p)
}

// PUT /profile
func (r *Router) handlePutProfile(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		PreferredLanguage string `json:"preferred_language"`
		ExplanationStyle  string `json:"preferred_explanation_style"`
		PrivacyMode       bool   `json:"privacy_mode"`
		AutoDeleteDays    int    `json:"auto_delete_days"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return application.Validation("invalid request body")
	}
	if err := middleware.ValidateLanguage(body.PreferredLanguage); err != nil {
		return application.Validation(err.Error())
	}
	if err := middleware.ValidateExplanationStyle(body.ExplanationStyle); err != nil {
		return application.Validation(err.Error())
	}
	if err := middleware.ValidateRetentionDays(body.AutoDeleteDays); err != nil {
		return application.Validation(err.Error())
	}

	p := &profile.Profile{
		UserID:            middleware.GetUserFromContext(req.Context()),
		PreferredLanguage: report.NormalizeLanguage(body.PreferredLanguage),
		ExplanationStyle:  profile.NormalizeStyle(body.ExplanationStyle),
		PrivacyMode:       body.PrivacyMode,
		AutoDeleteDays:    body.AutoDeleteDays,
	}
	if err := r.profiles.Upsert(req.Context(), p); err != nil {
		return err
	}
	return writeJSON(w, p)
}

// DELETE /data
func (r *Router) handleDeleteData(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserFromContext(req.Context())

	rep, err := r.privacySvc.DeleteAllData(req.Context(), userID)
	if err != nil {
		return err
	}
	return writeJSON(w, rep)
}
