package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultBatchSize = 25
	codeRelated      = "Code-Related"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIClassifier uses OpenAI to classify task titles
type AIClassifier struct {
	client    chatCompleter
	logger    *zap.Logger
	model     string
	batchSize int
}

// NewAIClassifier creates a new AI classifier
func NewAIClassifier(apiKey, model string, logger *zap.Logger) *AIClassifier {
	return newAIClassifier(openai.NewClient(apiKey), model, logger)
}

func newAIClassifier(client chatCompleter, model string, logger *zap.Logger) *AIClassifier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &AIClassifier{
		client:    client,
		logger:    logger,
		model:     model,
		batchSize: defaultBatchSize,
	}
}

// answer is the per-title object the model is asked to return
type answer struct {
	Type       string   `json:"Type"`
	Categories []string `json:"Categories"`
	FocusArea  []string `json:"FocusArea"`
}

// Classify implements Classifier
func (c *AIClassifier) Classify(ctx context.Context, titles []string) (map[string]Classification, error) {
	titles = dedupe(titles)
	out := make(map[string]Classification, len(titles))
	for start := 0; start < len(titles); start += c.batchSize {
		batch := titles[start:min(start+c.batchSize, len(titles))]
		answers, err := c.classifyBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, title := range batch {
			a, ok := answers[title]
			if !ok {
				c.logger.Debug("no classification for title", zap.String("title", title))
				continue
			}
			cl := Classification{
				CodeRelated: a.Type == codeRelated,
				Categories:  a.Categories,
				FocusAreas:  a.FocusArea,
			}
			if !valid(cl) {
				c.logger.Warn("discarding classification outside vocabulary",
					zap.String("title", title),
					zap.Strings("categories", a.Categories),
					zap.Strings("focus_areas", a.FocusArea),
				)
				continue
			}
			out[title] = cl
		}
	}

	c.logger.Info("classified tasks",
		zap.Int("titles", len(titles)),
		zap.Int("classified", len(out)),
	)
	return out, nil
}

func (c *AIClassifier) classifyBatch(ctx context.Context, titles []string) (map[string]answer, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an experienced product owner who categorizes software development task titles accurately.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(titles),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	var answers map[string]answer
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &answers); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return answers, nil
}

func buildPrompt(titles []string) string {
	var sb strings.Builder

	sb.WriteString("Categorize each of the following software development task titles.\n\n")
	sb.WriteString("For every title decide whether it is \"Code-Related\" (solved with code commits) ")
	sb.WriteString("or \"Non-Code-Related\", and pick one or more categories and focus areas.\n")
	sb.WriteString("Avoid false positives and do not explain your answer.\n\n")

	sb.WriteString("Categories: " + strings.Join(Categories, ", ") + "\n")
	sb.WriteString("Focus areas: " + strings.Join(FocusAreas, ", ") + "\n\n")

	sb.WriteString("Answer with a single JSON object keyed by the exact title:\n")
	sb.WriteString(`{"<title>": {"Type": "Code-Related", "Categories": ["Feature"], "FocusArea": ["Backend"]}}`)
	sb.WriteString("\n\nTitles:\n")
	for _, title := range titles {
		sb.WriteString("- " + title + "\n")
	}

	return sb.String()
}

func dedupe(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
