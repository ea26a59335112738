package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/config"
	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/services"
	"github.com/piggy-wanger/keep-fit/utils"
)

// AIController proxies chat requests to the user's configured
// OpenAI-compatible provider and manages the stored configurations.
type AIController struct {
	db     *gorm.DB
	client *services.AIClient
}

// NewAIController creates a new controller instance.
func NewAIController(db *gorm.DB) *AIController {
	cfg := config.Get()
	return &AIController{
		db:     db,
		client: services.NewAIClient(time.Duration(cfg.AIRequestTimeoutSec) * time.Second),
	}
}

// ListProviders returns the supported provider registry.
func (a *AIController) ListProviders(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"providers": services.AIProviders})
}

type aiConfigRequest struct {
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
	IsDefault bool   `json:"is_default"`
}

func (r *aiConfigRequest) validate(requireKey bool) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Model = strings.TrimSpace(r.Model)
	if r.Name == "" || r.Provider == "" || r.Model == "" {
		return errors.New("name, provider and model are required")
	}
	if requireKey && r.APIKey == "" {
		return errors.New("api_key is required")
	}
	if !services.ValidAIProvider(r.Provider) {
		return errors.New("unknown provider")
	}
	if r.Provider == "custom" && strings.TrimSpace(r.BaseURL) == "" {
		return errors.New("custom provider requires base_url")
	}
	return nil
}

func aiConfigResponse(c models.AIConfig) gin.H {
	return gin.H{
		"id":          c.ID,
		"name":        c.Name,
		"provider":    c.Provider,
		"model":       c.Model,
		"base_url":    c.BaseURL,
		"is_default":  c.IsDefault,
		"has_api_key": c.APIKey != "",
		"created_at":  c.CreatedAt,
	}
}

// CreateConfig stores a new provider configuration for the caller.
func (a *AIController) CreateConfig(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req aiConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request body")
		return
	}
	if err := req.validate(true); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, err.Error())
		return
	}

	cfg := models.AIConfig{
		UserID:    userID,
		Name:      req.Name,
		Provider:  req.Provider,
		Model:     req.Model,
		APIKey:    req.APIKey,
		BaseURL:   strings.TrimSpace(req.BaseURL),
		IsDefault: req.IsDefault,
	}
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.AIConfig{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50160, "failed to create config")
		return
	}

	utils.Success(ctx, gin.H{"config": aiConfigResponse(cfg)})
}

// ListConfigs returns the caller's configurations, default first.
func (a *AIController) ListConfigs(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var configs []models.AIConfig
	if err := a.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&configs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50161, "failed to load configs")
		return
	}

	items := make([]gin.H, 0, len(configs))
	for _, c := range configs {
		items = append(items, aiConfigResponse(c))
	}
	utils.Success(ctx, gin.H{"configs": items})
}

func (a *AIController) findConfig(ctx *gin.Context, userID uint) (models.AIConfig, bool) {
	var cfg models.AIConfig
	err := a.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "config not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50162, "failed to load config")
		}
		return cfg, false
	}
	return cfg, true
}

// GetConfig returns a single configuration owned by the caller.
func (a *AIController) GetConfig(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cfg, ok := a.findConfig(ctx, userID)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"config": aiConfigResponse(cfg)})
}

// UpdateConfig replaces a configuration. An empty api_key keeps the stored
// one.
func (a *AIController) UpdateConfig(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cfg, ok := a.findConfig(ctx, userID)
	if !ok {
		return
	}

	var req aiConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request body")
		return
	}
	if err := req.validate(false); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, err.Error())
		return
	}

	cfg.Name = req.Name
	cfg.Provider = req.Provider
	cfg.Model = req.Model
	cfg.BaseURL = strings.TrimSpace(req.BaseURL)
	cfg.IsDefault = req.IsDefault
	if req.APIKey != "" {
		cfg.APIKey = req.APIKey
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.AIConfig{}).
				Where("user_id = ? AND id <> ?", userID, cfg.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&cfg).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50163, "failed to update config")
		return
	}

	utils.Success(ctx, gin.H{"config": aiConfigResponse(cfg)})
}

// DeleteConfig removes a configuration owned by the caller.
func (a *AIController) DeleteConfig(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cfg, ok := a.findConfig(ctx, userID)
	if !ok {
		return
	}
	if err := a.db.Delete(&cfg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50164, "failed to delete config")
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}

// SetDefaultConfig marks a configuration as the caller's default and clears
// the flag from the others.
func (a *AIController) SetDefaultConfig(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cfg, ok := a.findConfig(ctx, userID)
	if !ok {
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AIConfig{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&cfg).Update("is_default", true).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50165, "failed to set default")
		return
	}
	cfg.IsDefault = true
	utils.Success(ctx, gin.H{"config": aiConfigResponse(cfg)})
}

// resolveChatConfig loads the requested config, or the default one when no
// id is given.
func (a *AIController) resolveChatConfig(userID uint, configID uint) (models.AIConfig, error) {
	var cfg models.AIConfig
	q := a.db.Where("user_id = ?", userID)
	if configID > 0 {
		q = q.Where("id = ?", configID)
	} else {
		q = q.Where("is_default = ?", true)
	}
	err := q.First(&cfg).Error
	return cfg, err
}

func chatConfigOf(cfg models.AIConfig) services.ChatConfig {
	return services.ChatConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	}
}

type chatContext struct {
	Health   string `json:"health"`
	Training string `json:"training"`
	Goals    string `json:"goals"`
}

type chatRequest struct {
	ConfigID uint                   `json:"config_id"`
	Messages []services.ChatMessage `json:"messages"`
	Context  *chatContext           `json:"context"`
}

func (r *chatRequest) validate() error {
	if len(r.Messages) == 0 {
		return errors.New("messages are required")
	}
	for _, m := range r.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			return errors.New("message role must be user or assistant")
		}
		if strings.TrimSpace(m.Content) == "" {
			return errors.New("message content must not be empty")
		}
	}
	return nil
}

// chatMessages optionally rewrites the conversation around the caller's
// status context, keeping only the latest user message.
func (r *chatRequest) chatMessages() []services.ChatMessage {
	if r.Context == nil {
		return r.Messages
	}
	last := r.Messages[len(r.Messages)-1]
	return services.BuildContextMessages(r.Context.Health, r.Context.Training, r.Context.Goals, last.Content)
}

// Chat forwards a conversation to the provider and returns the assistant
// reply in one response.
func (a *AIController) Chat(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, err.Error())
		return
	}

	cfg, err := a.resolveChatConfig(userID, req.ConfigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusBadRequest, 40063, "no AI configuration available")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50162, "failed to load config")
		}
		return
	}

	reply, err := a.client.Chat(ctx.Request.Context(), chatConfigOf(cfg), req.chatMessages())
	if err != nil {
		utils.Sugar.Warnf("ai chat failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusBadGateway, 50260, "AI provider request failed")
		return
	}

	utils.Success(ctx, gin.H{
		"message": gin.H{"role": "assistant", "content": reply},
		"model":   cfg.Model,
	})
}

// ChatStream forwards a conversation and relays the provider's stream to
// the client as server-sent events. Each chunk is sent as
// data: {"content": ...} and the stream is terminated with data: [DONE].
func (a *AIController) ChatStream(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, err.Error())
		return
	}

	cfg, err := a.resolveChatConfig(userID, req.ConfigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusBadRequest, 40063, "no AI configuration available")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50162, "failed to load config")
		}
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Writer.WriteHeader(http.StatusOK)
	ctx.Writer.Flush()

	appCfg := config.Get()
	streamCtx, cancel := context.WithTimeout(ctx.Request.Context(),
		time.Duration(appCfg.AIStreamIdleSec)*time.Second)
	defer cancel()

	// The request timeout on the shared client would cut long streams
	// short, so streaming uses its own client bound to streamCtx only.
	streamClient := services.NewAIClient(0)
	err = streamClient.ChatStream(streamCtx, chatConfigOf(cfg), req.chatMessages(), func(content string) error {
		payload, err := json.Marshal(gin.H{"content": content})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(ctx.Writer, "data: %s\n\n", payload); err != nil {
			return err
		}
		ctx.Writer.Flush()
		return nil
	})
	if err != nil {
		utils.Sugar.Warnf("ai stream failed for user %d: %v", userID, err)
		payload, _ := json.Marshal(gin.H{"error": "AI provider request failed"})
		fmt.Fprintf(ctx.Writer, "data: %s\n\n", payload)
	}

	fmt.Fprint(ctx.Writer, "data: [DONE]\n\n")
	ctx.Writer.Flush()
}

var suggestPrompts = map[string]string{
	"training": "根据我的训练历史，给我一些训练改进建议。",
	"diet":     "根据我的训练情况，给我一些饮食营养建议。",
	"plan":     "根据我当前的身体状况，帮我制定一个合理的训练计划。",
}

// Suggest builds a prompt from the caller's recent health records and
// training logs and returns a one-shot suggestion.
func (a *AIController) Suggest(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request body")
		return
	}
	prompt, ok := suggestPrompts[req.Type]
	if !ok {
		req.Type = "training"
		prompt = suggestPrompts["training"]
	}

	cfg, err := a.resolveChatConfig(userID, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusBadRequest, 40063, "no AI configuration available")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50162, "failed to load config")
		}
		return
	}

	contextText := a.buildSuggestContext(userID)
	messages := []services.ChatMessage{
		{Role: "user", Content: contextText + "\n\n" + prompt},
	}

	reply, err := a.client.Chat(ctx.Request.Context(), chatConfigOf(cfg), messages)
	if err != nil {
		utils.Sugar.Warnf("ai suggest failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusBadGateway, 50260, "AI provider request failed")
		return
	}

	utils.Success(ctx, gin.H{"response": reply, "type": req.Type})
}

// buildSuggestContext summarizes the last week of health records and the
// last ten training logs as prompt context. Load failures just shrink the
// context.
func (a *AIController) buildSuggestContext(userID uint) string {
	var b strings.Builder

	var records []models.HealthRecord
	if err := a.db.Where("user_id = ?", userID).
		Order("record_date DESC").Limit(7).
		Find(&records).Error; err == nil && len(records) > 0 {
		b.WriteString("最近健康数据：\n")
		for _, r := range records {
			weight := "-"
			if r.Weight != nil {
				weight = fmt.Sprintf("%.1f", *r.Weight)
			}
			steps := "-"
			if r.Steps != nil {
				steps = fmt.Sprintf("%d", *r.Steps)
			}
			b.WriteString(fmt.Sprintf("- %s: 体重%skg, 步数%s\n",
				r.RecordDate.Format("2006-01-02"), weight, steps))
		}
	}

	var logs []models.TrainingLog
	if err := a.db.Where("user_id = ?", userID).
		Order("log_date DESC").Limit(10).
		Find(&logs).Error; err == nil && len(logs) > 0 {
		b.WriteString("\n最近训练记录：\n")
		for _, l := range logs {
			duration := "-"
			if l.Duration != nil {
				duration = fmt.Sprintf("%d", *l.Duration)
			}
			b.WriteString(fmt.Sprintf("- %s: 训练%s分钟\n",
				l.LogDate.Format("2006-01-02"), duration))
		}
	}

	return b.String()
}
