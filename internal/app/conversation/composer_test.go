package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/gemini-relay/internal/app/conversation"
	"github.com/PabloGalante/gemini-relay/internal/domain"
)

func TestComposeTextOnly(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Parts: []domain.Part{domain.TextPart("a")}},
		{Role: domain.RoleModel, Parts: []domain.Part{domain.TextPart("b")}},
	}

	req, err := conversation.Compose(history, "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, history, req.History)
	assert.Equal(t, domain.RoleUser, req.NewTurn.Role)
	require.Len(t, req.NewTurn.Parts, 1)
	assert.Equal(t, domain.TextPart("hello"), req.NewTurn.Parts[0])

	contents := req.Contents()
	require.Len(t, contents, 3)
	assert.Equal(t, req.NewTurn, contents[2])
}

func TestComposeFileComesFirst(t *testing.T) {
	ref := &domain.RemoteAssetReference{MIMEType: "image/png", URI: "https://files/1"}

	req, err := conversation.Compose(nil, "describe this", ref)
	require.NoError(t, err)

	require.Len(t, req.NewTurn.Parts, 2)
	assert.Equal(t, domain.PartFile, req.NewTurn.Parts[0].Kind)
	assert.Equal(t, *ref, *req.NewTurn.Parts[0].File)
	assert.Equal(t, domain.PartText, req.NewTurn.Parts[1].Kind)
	assert.Equal(t, "describe this", req.NewTurn.Parts[1].Text)
}

func TestComposeFileWithoutText(t *testing.T) {
	ref := &domain.RemoteAssetReference{MIMEType: "application/pdf", URI: "https://files/2"}

	req, err := conversation.Compose(nil, "", ref)
	require.NoError(t, err)
	require.Len(t, req.NewTurn.Parts, 1)
	assert.Equal(t, domain.PartFile, req.NewTurn.Parts[0].Kind)
}

func TestComposeRejectsEmptyRequest(t *testing.T) {
	_, err := conversation.Compose(nil, "", nil)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = conversation.Compose(nil, "   ", nil)
	require.ErrorIs(t, err, domain.ErrValidation)
}
