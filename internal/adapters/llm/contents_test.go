package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

func TestBuildContentsKeepsOrder(t *testing.T) {
	ref := domain.RemoteAssetReference{MIMEType: "image/png", URI: "https://files/1"}
	turns := []domain.Turn{
		{Role: domain.RoleUser, Parts: []domain.Part{domain.TextPart("hello")}},
		{Role: domain.RoleModel, Parts: []domain.Part{domain.TextPart("hi there")}},
		{Role: domain.RoleUser, Parts: []domain.Part{domain.FilePart(ref), domain.TextPart("describe this")}},
	}

	contents, err := BuildContents(turns)
	require.NoError(t, err)
	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "hi there", contents[1].Parts[0].Text)

	last := contents[2]
	require.Len(t, last.Parts, 2)
	require.NotNil(t, last.Parts[0].FileData)
	assert.Equal(t, "https://files/1", last.Parts[0].FileData.FileURI)
	assert.Equal(t, "image/png", last.Parts[0].FileData.MIMEType)
	assert.Equal(t, "describe this", last.Parts[1].Text)
}

func TestBuildContentsRejectsEmptyTurn(t *testing.T) {
	_, err := BuildContents([]domain.Turn{{Role: domain.RoleUser}})
	require.Error(t, err)
}

func TestBuildContentsRejectsFilePartWithoutRef(t *testing.T) {
	_, err := BuildContents([]domain.Turn{{Role: domain.RoleUser, Parts: []domain.Part{{Kind: domain.PartFile}}}})
	require.Error(t, err)
}
