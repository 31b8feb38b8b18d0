package tts

import (
	"strings"

	"github.com/apresai/podcast-studio/internal/script"
)

// DefaultLanguage is the catalog language used when no voice override is given.
const DefaultLanguage = "English"

// VoiceInfo describes an available voice for display in the registry.
type VoiceInfo struct {
	ID          string
	Name        string
	Gender      string // script.GenderFemale or script.GenderMale
	Language    string
	Description string
}

// VoiceTable maps language -> gender -> voice id.
type VoiceTable map[string]map[string]string

// NewVoiceTable keeps the first voice listed for each language and gender.
func NewVoiceTable(voices []VoiceInfo) VoiceTable {
	t := VoiceTable{}
	for _, v := range voices {
		if t[v.Language] == nil {
			t[v.Language] = map[string]string{}
		}
		if _, ok := t[v.Language][v.Gender]; !ok {
			t[v.Language][v.Gender] = v.ID
		}
	}
	return t
}

// Default returns the default-language voice for a gender, or "".
func (t VoiceTable) Default(gender string) string {
	return t[DefaultLanguage][gender]
}

// Selection is the voice chosen for one role, fixed for a whole request.
type Selection struct {
	Role    script.Role
	VoiceID string
	Name    string
	Gender  string
}

// Resolve picks the voice for a role. A non-empty override is used verbatim
// and is not checked against the role's gender; otherwise the default-language
// voice for the role's gender is used.
func Resolve(role script.Role, override string, table VoiceTable) Selection {
	host := script.HostFor(role)
	id := override
	if strings.TrimSpace(id) == "" {
		id = table.Default(host.Gender)
	}
	return Selection{
		Role:    host.Role,
		VoiceID: id,
		Name:    host.Name,
		Gender:  host.Gender,
	}
}

var previewTexts = []struct {
	prefix string
	text   string
}{
	{"hi-IN", "Namaste, yeh meri awaaz ka sample hai. Aapko kaisa laga?"},
	{"ta-IN", "Vanakkam, ithu en kural maathiri."},
	{"te-IN", "Namaskaram, idi naa voice sample."},
}

const defaultPreviewText = "Hello, this is a preview of my voice. How does it sound?"

// PreviewText returns the sample sentence for a voice, keyed by the
// language prefix in its id.
func PreviewText(voiceID string) string {
	for _, p := range previewTexts {
		if strings.Contains(voiceID, p.prefix) {
			return p.text
		}
	}
	return defaultPreviewText
}
