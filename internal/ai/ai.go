// Package ai drafts product copy and answers back-office questions with Gemini.
package ai

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var ErrNotReadOnly = errors.New("ai: only single SELECT statements are allowed")

const (
	defaultModel = "gemini-1.5-flash"
	sqlToolName  = "run_readonly_sql"
	maxToolTurns = 5
	maxRows      = 200
)

// Service holds the Gemini client and a database handle used only for reads.
type Service struct {
	Client *genai.Client
	DB     *sql.DB
	Model  string
	Logger *zap.Logger
}

// NewService initializes the Gemini client.
func NewService(ctx context.Context, apiKey, model string, db *sql.DB, logger *zap.Logger) (*Service, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Client: client, DB: db, Model: model, Logger: logger}, nil
}

func (s *Service) Close() error {
	return s.Client.Close()
}

// DescribeInput is what an admin gives the copywriter.
type DescribeInput struct {
	Name     string          `json:"name" binding:"required"`
	Category models.Category `json:"category" binding:"required"`
	Notes    string          `json:"notes"`
}

// Answer is a reply from the back-office assistant.
type Answer struct {
	Text   string `json:"response"`
	Tokens int    `json:"tokensUsed"`
}

// DescribeProduct drafts a markdown product description.
func (s *Service) DescribeProduct(ctx context.Context, in DescribeInput) (string, error) {
	model := s.Client.GenerativeModel(s.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(
		"You write product descriptions for Hidaaya, a modest fashion store in Nigeria. " +
			"Write two short paragraphs of warm, plain English in Markdown. Bold one key feature. " +
			"No headings, no prices, no emojis.",
	)}}

	res, err := model.GenerateContent(ctx, genai.Text(describePrompt(in)))
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}
	text := responseText(res)
	if text == "" {
		return "", errors.New("ai: empty description")
	}
	return text, nil
}

// Ask answers an admin's question, letting the model run read-only SQL.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	// 1. Model with the SQL tool
	model := s.Client.GenerativeModel(s.Model)
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        sqlToolName,
			Description: "Executes a READ-ONLY MySQL query (a single SELECT) against the store database.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "The MySQL SELECT query to execute."},
				},
				Required: []string{"query"},
			},
		}},
	}}

	// 2. System instructions with the schema
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(
		"You are the Hidaaya Store back-office assistant. Amounts are whole Naira.\n" +
			"Schema:\n" + schemaDefinition + "\nRules: SELECT only. Be concise.",
	)}}

	// 3. Chat, answering tool calls until the model replies with text
	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return Answer{}, fmt.Errorf("error sending message: %w", err)
	}

	for turn := 0; ; turn++ {
		var tokens int
		if res.UsageMetadata != nil {
			tokens = int(res.UsageMetadata.TotalTokenCount)
		}

		call, ok := functionCall(res)
		if !ok {
			text := responseText(res)
			if text == "" {
				text = "No response."
			}
			return Answer{Text: text, Tokens: tokens}, nil
		}
		if call.Name != sqlToolName {
			return Answer{}, fmt.Errorf("unknown function: %s", call.Name)
		}
		if turn >= maxToolTurns {
			return Answer{}, errors.New("ai: too many tool calls")
		}

		query, _ := call.Args["query"].(string)
		s.Logger.Info("assistant running sql", zap.String("query", query))
		result, err := s.runReadOnlyQuery(ctx, query)
		if err != nil {
			result = fmt.Sprintf("SQL Error: %v", err)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     sqlToolName,
			Response: map[string]any{"result": result},
		})
		if err != nil {
			return Answer{}, fmt.Errorf("tool response error: %w", err)
		}
	}
}

func describePrompt(in DescribeInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\nCategory: %s\n", in.Name, in.Category)
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		fmt.Fprintf(&b, "Details from the shop owner: %s\n", notes)
	}
	return b.String()
}

func functionCall(res *genai.GenerateContentResponse) (genai.FunctionCall, bool) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return genai.FunctionCall{}, false
	}
	for _, part := range res.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			return call, true
		}
	}
	return genai.FunctionCall{}, false
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

var (
	selectPrefix   = regexp.MustCompile(`(?i)^\s*(select|with)\b`)
	forbiddenWords = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|replace|grant|revoke|into\s+outfile|load_file|sleep|benchmark|password_hash)\b`)
)

// checkReadOnly rejects anything but a single SELECT statement.
func checkReadOnly(query string) error {
	q := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if q == "" || !selectPrefix.MatchString(q) || strings.Contains(q, ";") || forbiddenWords.MatchString(q) {
		return ErrNotReadOnly
	}
	return nil
}

func (s *Service) runReadOnlyQuery(ctx context.Context, query string) (string, error) {
	if err := checkReadOnly(query); err != nil {
		return "", err
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}
	table := []map[string]any{}
	for rows.Next() && len(table) < maxRows {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		entry := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		table = append(table, entry)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	out, err := json.Marshal(table)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

const schemaDefinition = `
- products (id, name, slug, price, description, category [scarf, khimar, accessory, prayer, other], featured, created_at)
- product_images (id, product_id, url, is_primary, position)
- orders (id, user_id, first_name, last_name, email, phone_number, address, city, state, status [pending, processing, shipped, delivered, canceled], subtotal, tax, total, payment_reference, created_at)
- order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
- profiles (id, email, first_name, last_name, phone_number, role [customer, admin], created_at)
- store_settings (id, store_name, currency, tax_rate, contact_email)
- notifications (id, order_id, kind, status [success, limited, failed], detail, created_at)
`
