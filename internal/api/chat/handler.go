package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"garden-ai/internal/app/http/middleware"
	"garden-ai/internal/infra/llm"
	"garden-ai/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	MaxMessages      = 50
	MaxMessageLength = 4000
)

var errBadHistory = errors.New("invalid conversation")

// Completer produces the assistant's next turn for a conversation.
type Completer interface {
	Complete(ctx context.Context, history []llm.Message) (string, error)
}

type Handler struct {
	llm Completer
	log zerolog.Logger
}

func NewHandler(c Completer, log zerolog.Logger) *Handler {
	return &Handler{llm: c, log: log.With().Str("component", "chat").Logger()}
}

type generateBody struct {
	Messages []llm.Message `json:"messages"`
}

// Generate answers the latest user turn. The server keeps no history;
// a client that gets an error drops its unanswered turn.
func (h *Handler) Generate(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.ChatCompletionsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request"})
		return
	}

	history, err := validate(body.Messages)
	if err != nil {
		metrics.ChatCompletionsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := h.llm.Complete(c.Request.Context(), history)
	if err != nil {
		metrics.ChatCompletionsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).
			Str("user_id", c.GetString(middleware.CtxUserID)).
			Int("messages", len(history)).
			Msg("completion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The assistant is unavailable right now, please try again"})
		return
	}

	metrics.ChatCompletionsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func validate(msgs []llm.Message) ([]llm.Message, error) {
	if len(msgs) == 0 {
		return nil, errors.New("messages must not be empty")
	}
	if len(msgs) > MaxMessages {
		return nil, errors.New("too many messages")
	}

	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != llm.RoleUser && role != llm.RoleAssistant {
			return nil, errors.New("message role must be user or assistant")
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			return nil, errors.New("message content must not be empty")
		}
		if utf8.RuneCountInString(content) > MaxMessageLength {
			return nil, errors.New("message is too long")
		}
		out = append(out, llm.Message{Role: role, Content: content})
	}
	if out[len(out)-1].Role != llm.RoleUser {
		return nil, errors.New("last message must come from the user")
	}
	return out, nil
}
