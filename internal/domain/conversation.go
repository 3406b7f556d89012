package domain

// PartKind tags which field of a Part is populated.
type PartKind string

const (
	PartText PartKind = "text"
	PartFile PartKind = "file"
)

// Part is one piece of a turn: either text or a reference to a remote file.
// Exactly one of Text or File is meaningful, as selected by Kind.
type Part struct {
	Kind PartKind
	Text string
	File *RemoteAssetReference
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// FilePart builds a file-reference part.
func FilePart(ref RemoteAssetReference) Part {
	r := ref
	return Part{Kind: PartFile, File: &r}
}

// Turn is a single message in the conversation. Turns are immutable once
// appended to a history and always carry at least one part.
type Turn struct {
	Role  Role
	Parts []Part
}

// Clone returns a deep copy of the turn.
func (t Turn) Clone() Turn {
	parts := make([]Part, len(t.Parts))
	for i, p := range t.Parts {
		parts[i] = p
		if p.File != nil {
			f := *p.File
			parts[i].File = &f
		}
	}
	return Turn{Role: t.Role, Parts: parts}
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var out string
	for _, p := range t.Parts {
		if p.Kind == PartText {
			out += p.Text
		}
	}
	return out
}

// ProviderRequest is what gets sent to the generation client: the prior
// conversation followed by the new user turn.
type ProviderRequest struct {
	History []Turn
	NewTurn Turn
}

// Contents returns History ++ [NewTurn].
func (r ProviderRequest) Contents() []Turn {
	out := make([]Turn, 0, len(r.History)+1)
	out = append(out, r.History...)
	return append(out, r.NewTurn)
}
