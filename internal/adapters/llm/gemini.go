package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type fileUploader interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
}

// GeminiClient talks to the Gemini API. It implements both
// domain.Generator and domain.AssetUploader.
type GeminiClient struct {
	client       *genai.Client
	models       contentGenerator
	files        fileUploader
	modelName    string
	systemPrompt string
}

// NewGeminiClient creates a client for the Gemini Developer API.
func NewGeminiClient(ctx context.Context, apiKey, modelName, systemPrompt string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("gemini model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		models:       client.Models,
		files:        client.Files,
		modelName:    modelName,
		systemPrompt: systemPrompt,
	}, nil
}

func (g *GeminiClient) ModelName() string {
	return g.modelName
}

// Generate implements domain.Generator.
func (g *GeminiClient) Generate(ctx context.Context, req domain.ProviderRequest) (string, error) {
	contents, err := BuildContents(req.Contents())
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	var cfg *genai.GenerateContentConfig
	if s := strings.TrimSpace(g.systemPrompt); s != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(s, genai.RoleUser),
		}
	}

	res, err := g.models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate content: %w", domain.ErrGeneration, err)
	}
	if res == nil {
		return "", fmt.Errorf("%w: gemini returned no response", domain.ErrGeneration)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned empty text", domain.ErrGeneration)
	}

	return text, nil
}

// Upload implements domain.AssetUploader. It does not release the attachment.
func (g *GeminiClient) Upload(ctx context.Context, att *domain.Attachment) (domain.RemoteAssetReference, error) {
	if err := validateAttachment(att); err != nil {
		return domain.RemoteAssetReference{}, err
	}

	file, err := g.files.UploadFromPath(ctx, att.Path, &genai.UploadFileConfig{
		MIMEType:    att.MIMEType,
		DisplayName: att.OriginalName,
	})
	if err != nil {
		return domain.RemoteAssetReference{}, fmt.Errorf("%w: gemini upload file: %w", domain.ErrUpload, err)
	}
	if file == nil || file.URI == "" || file.MIMEType == "" {
		return domain.RemoteAssetReference{}, fmt.Errorf("%w: gemini upload returned no uri or mime type", domain.ErrUpload)
	}

	return domain.RemoteAssetReference{MIMEType: file.MIMEType, URI: file.URI}, nil
}

// ListModels returns the names of the models visible to the API key.
func (g *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	if g.client == nil {
		return nil, fmt.Errorf("gemini client not initialised")
	}

	var names []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("listing gemini models: %w", err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}

func validateAttachment(att *domain.Attachment) error {
	switch {
	case att == nil:
		return fmt.Errorf("%w: no attachment", domain.ErrValidation)
	case att.SizeBytes <= 0:
		return fmt.Errorf("%w: attachment %q is empty", domain.ErrValidation, att.OriginalName)
	case att.MIMEType == "":
		return fmt.Errorf("%w: attachment %q has no content type", domain.ErrValidation, att.OriginalName)
	}
	return nil
}
