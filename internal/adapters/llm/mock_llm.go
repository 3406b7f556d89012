package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

// MockLLM answers without network access. It implements domain.Generator
// and domain.AssetUploader for local development.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(_ context.Context, req domain.ProviderRequest) (string, error) {
	files := 0
	for _, p := range req.NewTurn.Parts {
		if p.Kind == domain.PartFile {
			files++
		}
	}
	return fmt.Sprintf("You said %q (%d earlier turns, %d files).",
		req.NewTurn.Text(), len(req.History), files), nil
}

func (m *MockLLM) Upload(_ context.Context, att *domain.Attachment) (domain.RemoteAssetReference, error) {
	if err := validateAttachment(att); err != nil {
		return domain.RemoteAssetReference{}, err
	}
	return domain.RemoteAssetReference{
		MIMEType: att.MIMEType,
		URI:      "mock://files/" + att.ID,
	}, nil
}
