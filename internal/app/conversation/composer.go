package conversation

import (
	"strings"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

// Compose builds the request for the provider: the given history followed by
// a new user turn. The file reference, when present, comes before the text.
// A blank text is dropped from the turn if a file carries it; with neither
// the request is rejected.
//
// The new turn is not written anywhere; the caller appends it after the
// provider answers.
func Compose(history []domain.Turn, text string, fileRef *domain.RemoteAssetReference) (domain.ProviderRequest, error) {
	blank := strings.TrimSpace(text) == ""
	if blank && fileRef == nil {
		return domain.ProviderRequest{}, domain.ErrPromptRequired
	}

	parts := make([]domain.Part, 0, 2)
	if fileRef != nil {
		parts = append(parts, domain.FilePart(*fileRef))
	}
	if !blank {
		parts = append(parts, domain.TextPart(text))
	}

	return domain.ProviderRequest{
		History: history,
		NewTurn: domain.Turn{Role: domain.RoleUser, Parts: parts},
	}, nil
}
