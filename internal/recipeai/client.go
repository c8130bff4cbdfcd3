package recipeai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/config"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/recipe"
)

// Mode selects what the draft generator works from.
type Mode string

const (
	ModeFridge Mode = "fridge" // cook from what's in the user's fridge
	ModeRandom Mode = "random" // surprise me
	ModePrompt Mode = "prompt" // free-form user instructions
)

// Request describes one draft generation. FridgeItems is only consulted
// for ModeFridge, Prompt only for ModePrompt.
type Request struct {
	Mode        Mode
	Prompt      string
	FridgeItems []model.FridgeItem
}

// Client calls an OpenAI-compatible chat-completions endpoint and decodes
// the reply into a recipe draft. Nothing is persisted here; the caller
// decides whether to save the draft.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

const systemPrompt = `You are a recipe generator that outputs STRICT JSON for a mobile app.
Do NOT include markdown, commentary, or any fields not listed below.
Return exactly one JSON object with this shape:

{
  "title": string,
  "description": string | null,
  "photoUrl": string | null,
  "prepTimeMinutes": number | null,
  "cookTimeMinutes": number | null,
  "ingredients": [
    {
      "name": string,
      "quantity": number | null,
      "unit": string | null,
      "label": string | null,
      "note": string | null,
      "brand": string | null
    }
  ],
  "steps": string[],
  "tags": string[],
  "sourceUrl": string | null
}

Guidelines:
- Use realistic quantities and units.
- Use short, clear step instructions.
- "tags": 2-6 short keywords, e.g. ["quick", "vegetarian", "pasta"].
- If you don't know photoUrl or sourceUrl, set them to null.
- If you don't know a field, use null rather than inventing specific brand names, people, or URLs.`

func buildInstruction(req Request) (string, error) {
	switch req.Mode {
	case ModeFridge:
		parts := make([]string, 0, len(req.FridgeItems))
		for _, item := range req.FridgeItems {
			unit := ""
			if item.Unit != "" {
				unit = " " + item.Unit
			}
			parts = append(parts, fmt.Sprintf("%s (%g%s)", item.Name, item.Quantity, unit))
		}
		summary := strings.Join(parts, ", ")
		if summary == "" {
			summary = "(no items provided, use common pantry items)"
		}
		return fmt.Sprintf(`Create a recipe based primarily on these ingredients from the user's fridge:
%s

The recipe should be realistic and something a home cook could make.
If appropriate, add a few helpful tags (like "quick", "vegetarian", "one-pot").`, summary), nil

	case ModeRandom:
		return `Create a random but appealing recipe.
Choose a cuisine and style, but it must be practical to cook at home.
Include a few descriptive tags (e.g. "comfort food", "spicy", "30-minute").`, nil

	case ModePrompt:
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			prompt = "(no prompt provided, choose something simple and common)"
		}
		return fmt.Sprintf(`The user has given you instructions for the kind of recipe they want.
Follow their constraints very closely.

User prompt:
%s

Include a few helpful tags that summarize style, diet, or difficulty.
If there is no external URL, set sourceUrl to null.`, prompt), nil

	default:
		return "", apperror.Invalid("unknown generation mode %q", req.Mode)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// draft mirrors the JSON shape the system prompt demands.
type draft struct {
	Title           string   `json:"title"`
	Description     *string  `json:"description"`
	PhotoURL        *string  `json:"photoUrl"`
	PrepTimeMinutes *int     `json:"prepTimeMinutes"`
	CookTimeMinutes *int     `json:"cookTimeMinutes"`
	Ingredients     []struct {
		Name     string   `json:"name"`
		Quantity *float64 `json:"quantity"`
		Unit     *string  `json:"unit"`
		Label    *string  `json:"label"`
		Note     *string  `json:"note"`
		Brand    *string  `json:"brand"`
	} `json:"ingredients"`
	Steps     []string `json:"steps"`
	Tags      []string `json:"tags"`
	SourceURL *string  `json:"sourceUrl"`
}

// Generate produces an unsaved recipe draft.
func (c *Client) Generate(ctx context.Context, req Request) (*recipe.Input, error) {
	instruction, err := buildInstruction(req)
	if err != nil {
		return nil, err
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instruction},
		},
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, snippet)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("chat completion returned no content")
	}

	var d draft
	if err := json.Unmarshal([]byte(stripFences(chat.Choices[0].Message.Content)), &d); err != nil {
		return nil, fmt.Errorf("decode recipe draft: %w", err)
	}
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("recipe draft has no title")
	}
	return d.toInput(), nil
}

// stripFences removes a markdown code fence if the model added one
// despite JSON mode.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func (d *draft) toInput() *recipe.Input {
	in := &recipe.Input{
		Title:           strings.TrimSpace(d.Title),
		PhotoURL:        d.PhotoURL,
		PrepTimeMinutes: d.PrepTimeMinutes,
		CookTimeMinutes: d.CookTimeMinutes,
		Ingredients:     make([]recipe.IngredientInput, 0, len(d.Ingredients)),
		Steps:           d.Steps,
		Tags:            d.Tags,
		SourceURL:       d.SourceURL,
	}
	if d.Description != nil {
		in.Description = *d.Description
	}
	for _, ing := range d.Ingredients {
		in.Ingredients = append(in.Ingredients, recipe.IngredientInput{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Label:    ing.Label,
			Note:     ing.Note,
			Brand:    ing.Brand,
		})
	}
	if in.Steps == nil {
		in.Steps = []string{}
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return in
}
