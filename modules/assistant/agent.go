package assistant

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hr-ontology-assistant")

const (
	MaxIterations    = 10
	DefaultMaxTokens = 4096
	DefaultModel     = "claude-sonnet-4-6"

	maxIterationsAnswer = "I reached the maximum number of tool calls. Please try a more specific question."
)

var (
	ErrNoAPIKey        = errors.New("ANTHROPIC_API_KEY is not set")
	ErrEmptyCompletion = errors.New("no response from model")
	ErrEmptyMessage    = errors.New("message is empty")
)

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation as exchanged with clients.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ToolCall records a tool invocation made while answering.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
}

type Reply struct {
	Answer     string     `json:"answer"`
	ToolCalls  []ToolCall `json:"tool_calls"`
	Iterations int        `json:"iterations"`
	Cached     bool       `json:"cached"`
}

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
	Tools     *Toolbox
	// Cache is optional.
	Cache  Cache
	Logger logrus.FieldLogger
}

// Agent answers questions with a tool-calling loop against an
// OpenAI-compatible chat completions endpoint.
type Agent struct {
	client    openai.Client
	model     string
	maxTokens int64
	tools     *Toolbox
	cache     Cache
	log       logrus.FieldLogger
	system    string
}

func NewAgent(cfg Config) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Tools == nil {
		cfg.Tools = NewToolbox(nil, nil, nil)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Agent{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		tools:     cfg.Tools,
		cache:     cfg.Cache,
		log:       cfg.Logger,
		system:    SystemPrompt(),
	}, nil
}

func (a *Agent) Model() string {
	return a.model
}

// Chat answers message given the earlier turns in history. onTool, when not
// nil, is called after every tool execution.
func (a *Agent) Chat(ctx context.Context, history []Message, message string, onTool func(ToolCall)) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "assistant.Chat", trace.WithAttributes(attribute.String("llm.model", a.model)))
	defer span.End()

	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	conversation := append(append([]Message{}, history...), Message{Role: RoleUser, Content: message})

	key, cached := a.cached(ctx, conversation)
	if cached != "" {
		span.SetAttributes(attribute.Bool("chat.cached", true))
		return &Reply{Answer: cached, ToolCalls: []ToolCall{}, Cached: true}, nil
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(conversation)+1)
	msgs = append(msgs, openai.SystemMessage(a.system))
	for _, m := range conversation {
		if m.Role == RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	reply := &Reply{ToolCalls: []ToolCall{}}
	for reply.Iterations < MaxIterations {
		reply.Iterations++
		start := time.Now()
		resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:     a.model,
			Messages:  msgs,
			MaxTokens: openai.Int(a.maxTokens),
			Tools:     Definitions(),
		})
		observeCompletion(time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrap(err, "chat completion")
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyCompletion
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			reply.Answer = strings.TrimSpace(thinkTagRegex.ReplaceAllString(choice.Content, ""))
			a.store(ctx, key, reply.Answer)
			a.log.WithFields(logrus.Fields{
				"iterations": reply.Iterations,
				"tool_calls": len(reply.ToolCalls),
			}).Info("chat answered")
			return reply, nil
		}

		msgs = append(msgs, choice.ToParam())
		for _, tc := range choice.ToolCalls {
			call := ToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments}
			call.Result = a.tools.Execute(ctx, call.Name, call.Arguments)
			a.log.WithField("tool", call.Name).Debug("tool executed")
			reply.ToolCalls = append(reply.ToolCalls, call)
			if onTool != nil {
				onTool(call)
			}
			msgs = append(msgs, openai.ToolMessage(call.Result, tc.ID))
		}
	}

	reply.Answer = maxIterationsAnswer
	return reply, nil
}

func (a *Agent) cached(ctx context.Context, conversation []Message) (key, answer string) {
	if a.cache == nil {
		return "", ""
	}
	key, err := CacheKey(a.model, conversation)
	if err != nil {
		a.log.WithError(err).Warn("chat cache key")
		return "", ""
	}
	answer, err = a.cache.Get(ctx, key)
	switch {
	case errors.Is(err, ErrCacheMiss):
		recordCache("miss")
	case err != nil:
		recordCache("error")
		a.log.WithError(err).Warn("chat cache read failed")
	default:
		recordCache("hit")
	}
	return key, answer
}

func (a *Agent) store(ctx context.Context, key, answer string) {
	if a.cache == nil || key == "" || answer == "" {
		return
	}
	if err := a.cache.Set(ctx, key, answer); err != nil {
		a.log.WithError(err).Warn("chat cache write failed")
	}
}
