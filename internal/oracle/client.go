// Package oracle implements the game.Oracle port on top of an
// OpenAI-compatible chat completion API.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"oraklo/internal/game"
)

// dmPreamble is the system prompt for adventure narration.
const dmPreamble = `You are an expert Dungeon Master for a Dungeons & Dragons 5th Edition game.

Your role is to create an immersive, engaging, and dynamic D&D experience in a text-based format. You will:

1. Create rich, evocative descriptions of locations, NPCs, monsters, and scenarios
2. Respond to player actions by narrating outcomes and advancing the story
3. Incorporate D&D rules when appropriate, but prioritize storytelling over strict rule adherence
4. Craft a compelling narrative that responds to player choices
5. Present interesting challenges, puzzles, and combat encounters
6. Maintain consistent world details and NPC personalities

Always respond in character as the Dungeon Master and make the adventure feel like a real D&D session. Present options in an open-ended way that encourages player agency and creativity.`

// Config carries the client settings, all supplied by the caller.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

// Client talks to the completion API with a per-call timeout, a
// client-side rate limiter and bounded retries for transient failures.
type Client struct {
	api        *openai.Client
	model      string
	timeout    time.Duration
	maxRetries uint64
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// New builds an oracle client. The API key is required.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("oracle API key is not set")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 20
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: uint64(cfg.MaxRetries),
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 5),
		log:        log,
	}, nil
}

// GenerateSubject invents a secret subject for a Twenty Questions game.
func (c *Client) GenerateSubject(ctx context.Context, category game.Category) (string, error) {
	system := fmt.Sprintf(
		"You run a game of 20 Questions. Choose a secret subject in the category %q. "+
			"Pick something a well-read player could plausibly reach in twenty yes/no questions. "+
			"Respond with only the name of the subject, nothing else.", category)

	reply, err := c.chat(ctx, system, nil, "Choose the secret subject now.", 1.0)
	if err != nil {
		return "", err
	}

	subject := strings.Trim(strings.TrimSpace(reply), "\"'.")
	if subject == "" || strings.Contains(subject, "\n") {
		return "", fmt.Errorf("%w: unusable subject %q", game.ErrInvalidResponse, reply)
	}
	return subject, nil
}

// Ask answers a yes/no question about the secret subject. Replies that
// cannot be parsed degrade to AnswerUnknown.
func (c *Client) Ask(ctx context.Context, subject, question string) (game.Answer, error) {
	system := fmt.Sprintf(
		"You are the answerer in a game of 20 Questions. The secret subject is %q. "+
			"Answer the player's yes/no question about it with exactly one word: yes, no, or unknown. "+
			"Use unknown only when the question truly has no yes/no answer.", subject)

	reply, err := c.chat(ctx, system, nil, question, 0)
	if err != nil {
		return "", err
	}

	answer, ok := parseAnswer(reply)
	if !ok {
		c.log.Warn().Str("reply", reply).Msg("unparseable answer, treating as unknown")
		return game.AnswerUnknown, nil
	}
	return answer, nil
}

// Judge decides whether a final guess names the secret subject. A reply
// that is not a clear yes or no fails with ErrInvalidResponse.
func (c *Client) Judge(ctx context.Context, subject, guess string) (game.Answer, error) {
	system := fmt.Sprintf(
		"You are the answerer in a game of 20 Questions. The secret subject is %q. "+
			"The player makes their final guess. Reply with exactly one word: "+
			"yes if the guess names the subject (allowing close synonyms and spelling), no otherwise.", subject)

	reply, err := c.chat(ctx, system, nil, fmt.Sprintf("Final guess: %s", guess), 0)
	if err != nil {
		return "", err
	}

	answer, ok := parseAnswer(reply)
	if !ok || answer == game.AnswerUnknown {
		return "", fmt.Errorf("%w: verdict %q", game.ErrInvalidResponse, reply)
	}
	return answer, nil
}

// Narrate continues the adventure from the given history and prompt.
func (c *Client) Narrate(ctx context.Context, history []game.Message, prompt string) (string, error) {
	reply, err := c.chat(ctx, dmPreamble, history, prompt, 0.7)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty narration", game.ErrInvalidResponse)
	}
	return reply, nil
}

// chat performs one completion round-trip with rate limiting, a per-attempt
// timeout and exponential backoff on transient failures.
func (c *Client) chat(ctx context.Context, system string, history []game.Message, prompt string, temperature float32) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", game.ErrUnavailable, err)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == game.RoleDM {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	operation := func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: temperature,
		})
		if err != nil {
			c.log.Warn().Err(err).Msg("completion call failed")
			return "", c.classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(fmt.Errorf("%w: no choices returned", game.ErrInvalidResponse))
		}
		return resp.Choices[0].Message.Content, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	return backoff.RetryWithData(operation, policy)
}

// classify maps transport and API errors onto the oracle error taxonomy.
// Only ErrUnavailable from a server fault or timeout is retryable.
func (c *Client) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return backoff.Permanent(fmt.Errorf("%w: %v", game.ErrRateLimited, err))
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", game.ErrUnavailable, err)
		default:
			return backoff.Permanent(fmt.Errorf("%w: %v", game.ErrUnavailable, err))
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == http.StatusTooManyRequests:
			return backoff.Permanent(fmt.Errorf("%w: %v", game.ErrRateLimited, err))
		case reqErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", game.ErrUnavailable, err)
		}
	}

	// Timeouts and network failures are transient.
	return fmt.Errorf("%w: %v", game.ErrUnavailable, err)
}

// parseAnswer extracts a yes/no/unknown verdict from a completion reply.
func parseAnswer(raw string) (game.Answer, bool) {
	word := strings.ToLower(strings.TrimSpace(raw))
	word = strings.Trim(word, "\"'*_.,!: ")
	if i := strings.IndexAny(word, " .,!\n"); i > 0 {
		word = word[:i]
	}
	switch word {
	case "yes":
		return game.AnswerYes, true
	case "no", "nope":
		return game.AnswerNo, true
	case "unknown":
		return game.AnswerUnknown, true
	}
	return game.AnswerUnknown, false
}
