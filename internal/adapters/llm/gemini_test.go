package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

type fakeModels struct {
	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

type fakeFiles struct {
	calls  int
	path   string
	config *genai.UploadFileConfig
	file   *genai.File
	err    error
}

func (f *fakeFiles) UploadFromPath(_ context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error) {
	f.calls++
	f.path = path
	f.config = config
	return f.file, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(s, genai.RoleModel)}},
	}
}

func newTestClient(m *fakeModels, f *fakeFiles, system string) *GeminiClient {
	return &GeminiClient{models: m, files: f, modelName: "gemini-test", systemPrompt: system}
}

func TestGenerateSendsHistoryAndNewTurn(t *testing.T) {
	m := &fakeModels{resp: textResponse("generated")}
	c := newTestClient(m, &fakeFiles{}, "be brief")

	req := domain.ProviderRequest{
		History: []domain.Turn{
			{Role: domain.RoleUser, Parts: []domain.Part{domain.TextPart("a")}},
			{Role: domain.RoleModel, Parts: []domain.Part{domain.TextPart("b")}},
		},
		NewTurn: domain.Turn{Role: domain.RoleUser, Parts: []domain.Part{domain.TextPart("c")}},
	}

	out, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "generated", out)
	assert.Equal(t, "gemini-test", m.model)
	require.Len(t, m.contents, 3)
	assert.Equal(t, "c", m.contents[2].Parts[0].Text)
	require.NotNil(t, m.config)
	assert.Equal(t, "be brief", m.config.SystemInstruction.Parts[0].Text)
}

func TestGenerateClassifiesFailures(t *testing.T) {
	req := domain.ProviderRequest{NewTurn: domain.Turn{Role: domain.RoleUser, Parts: []domain.Part{domain.TextPart("x")}}}

	cases := map[string]*fakeModels{
		"provider error": {err: errors.New("503 unavailable")},
		"nil response":   {},
		"empty text":     {resp: &genai.GenerateContentResponse{}},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestClient(m, &fakeFiles{}, "").Generate(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrGeneration)
		})
	}
}

func TestUploadReturnsReference(t *testing.T) {
	f := &fakeFiles{file: &genai.File{URI: "https://files/abc", MIMEType: "image/png"}}
	c := newTestClient(&fakeModels{}, f, "")

	att := &domain.Attachment{OriginalName: "cat.png", MIMEType: "image/png", Path: "/tmp/x.png", SizeBytes: 10}
	ref, err := c.Upload(context.Background(), att)
	require.NoError(t, err)
	assert.Equal(t, domain.RemoteAssetReference{MIMEType: "image/png", URI: "https://files/abc"}, ref)
	assert.Equal(t, "/tmp/x.png", f.path)
	assert.Equal(t, "image/png", f.config.MIMEType)
	assert.Equal(t, "cat.png", f.config.DisplayName)
}

func TestUploadValidatesBeforeNetwork(t *testing.T) {
	f := &fakeFiles{}
	c := newTestClient(&fakeModels{}, f, "")

	_, err := c.Upload(context.Background(), &domain.Attachment{MIMEType: "image/png", SizeBytes: 0})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = c.Upload(context.Background(), &domain.Attachment{SizeBytes: 3})
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 0, f.calls)
}

func TestUploadClassifiesFailures(t *testing.T) {
	att := &domain.Attachment{OriginalName: "a.png", MIMEType: "image/png", Path: "/tmp/a.png", SizeBytes: 1}

	cases := map[string]*fakeFiles{
		"network":      {err: errors.New("connection refused")},
		"nil file":     {},
		"missing uri":  {file: &genai.File{MIMEType: "image/png"}},
		"missing mime": {file: &genai.File{URI: "https://files/1"}},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestClient(&fakeModels{}, f, "").Upload(context.Background(), att)
			require.ErrorIs(t, err, domain.ErrUpload)
		})
	}
}

func TestMockLLM(t *testing.T) {
	m := NewMockLLM()
	ref, err := m.Upload(context.Background(), &domain.Attachment{ID: "1", MIMEType: "text/plain", SizeBytes: 2})
	require.NoError(t, err)
	assert.Equal(t, "mock://files/1", ref.URI)

	out, err := m.Generate(context.Background(), domain.ProviderRequest{
		NewTurn: domain.Turn{Role: domain.RoleUser, Parts: []domain.Part{domain.FilePart(ref), domain.TextPart("hi")}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"hi"`)
	assert.Contains(t, out, "1 files")
}
