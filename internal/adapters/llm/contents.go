package llm

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

// BuildContents maps conversation turns to Gemini contents, keeping the
// order of turns and of parts within each turn.
func BuildContents(turns []domain.Turn) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for i, t := range turns {
		if len(t.Parts) == 0 {
			return nil, fmt.Errorf("turn %d has no parts", i)
		}

		parts := make([]*genai.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			switch p.Kind {
			case domain.PartText:
				parts = append(parts, genai.NewPartFromText(p.Text))
			case domain.PartFile:
				if p.File == nil {
					return nil, fmt.Errorf("turn %d: file part without reference", i)
				}
				parts = append(parts, genai.NewPartFromURI(p.File.URI, p.File.MIMEType))
			default:
				return nil, fmt.Errorf("turn %d: unknown part kind %q", i, p.Kind)
			}
		}

		contents = append(contents, genai.NewContentFromParts(parts, toGenaiRole(t.Role)))
	}
	return contents, nil
}

func toGenaiRole(r domain.Role) genai.Role {
	switch r {
	case domain.RoleModel:
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}
