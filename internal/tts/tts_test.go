package tts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apresai/podcast-studio/internal/script"
)

func TestResolveDefaults(t *testing.T) {
	table := NewVoiceTable(azureAvailableVoices())

	first := Resolve(script.FirstHost, "", table)
	if first.VoiceID != "en-IN-NeerjaNeural" || first.Name != "Priya" || first.Gender != script.GenderFemale {
		t.Fatalf("first host = %+v", first)
	}
	second := Resolve(script.SecondHost, "", table)
	if second.VoiceID != "en-IN-PrabhatNeural" || second.Name != "Arjun" || second.Gender != script.GenderMale {
		t.Fatalf("second host = %+v", second)
	}
}

func TestResolveOverrideVerbatim(t *testing.T) {
	table := NewVoiceTable(azureAvailableVoices())

	// A male voice for the female host is trusted as given.
	sel := Resolve(script.FirstHost, "hi-IN-MadhurNeural", table)
	if sel.VoiceID != "hi-IN-MadhurNeural" {
		t.Fatalf("voice = %q", sel.VoiceID)
	}
	if sel.Name != "Priya" || sel.Gender != script.GenderFemale {
		t.Fatalf("name/gender should follow the role, got %+v", sel)
	}

	sel = Resolve(script.SecondHost, "not-a-voice", table)
	if sel.VoiceID != "not-a-voice" {
		t.Fatalf("malformed override should pass through, got %q", sel.VoiceID)
	}

	sel = Resolve(script.SecondHost, "   ", table)
	if sel.VoiceID != "en-IN-PrabhatNeural" {
		t.Fatalf("blank override should use default, got %q", sel.VoiceID)
	}
}

func TestVoiceTableKeepsFirstPerGender(t *testing.T) {
	table := NewVoiceTable([]VoiceInfo{
		{ID: "a", Gender: script.GenderFemale, Language: "English"},
		{ID: "b", Gender: script.GenderFemale, Language: "English"},
		{ID: "c", Gender: script.GenderMale, Language: "Hindi"},
	})
	if got := table.Default(script.GenderFemale); got != "a" {
		t.Fatalf("default female = %q", got)
	}
	if got := table.Default(script.GenderMale); got != "" {
		t.Fatalf("no english male voice, got %q", got)
	}
	if table["Hindi"][script.GenderMale] != "c" {
		t.Fatalf("table = %v", table)
	}
}

func TestEveryCatalogHasDefaults(t *testing.T) {
	for _, name := range ProviderNames() {
		voices, err := AvailableVoices(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		table := NewVoiceTable(voices)
		for _, g := range []string{script.GenderFemale, script.GenderMale} {
			if table.Default(g) == "" {
				t.Errorf("%s has no default %s voice", name, g)
			}
		}
	}
	if _, err := AvailableVoices("nope"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestPreviewText(t *testing.T) {
	cases := map[string]string{
		"hi-IN-SwaraNeural":   "Namaste",
		"ta-IN-PallaviNeural": "Vanakkam",
		"te-IN-MohanNeural":   "Namaskaram",
		"en-IN-NeerjaNeural":  "Hello",
		"Kajal":               "Hello",
	}
	for voice, prefix := range cases {
		if got := PreviewText(voice); !strings.HasPrefix(got, prefix) {
			t.Errorf("PreviewText(%q) = %q", voice, got)
		}
	}
}

func TestLanguageCode(t *testing.T) {
	if got := languageCode("en-IN-NeerjaNeural", "x"); got != "en-IN" {
		t.Fatalf("got %q", got)
	}
	if got := languageCode("Kajal", "en-US"); got != "en-US" {
		t.Fatalf("got %q", got)
	}
}

func TestAzureSynthesize(t *testing.T) {
	var gotBody, gotKey, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	p := NewAzureProvider(ProviderConfig{AzureKey: "k"})
	p.endpoint = srv.URL

	res, err := p.Synthesize(context.Background(), "Tom & Jerry <3", Voice{ID: "hi-IN-SwaraNeural"})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Data) != "mp3-bytes" || res.Format != FormatMP3 {
		t.Fatalf("result = %+v", res)
	}
	if gotKey != "k" || gotFormat != azureOutputFormat {
		t.Fatalf("headers key=%q format=%q", gotKey, gotFormat)
	}
	if !strings.Contains(gotBody, `xml:lang="hi-IN"`) || !strings.Contains(gotBody, `name="hi-IN-SwaraNeural"`) {
		t.Fatalf("ssml = %s", gotBody)
	}
	if !strings.Contains(gotBody, "Tom &amp; Jerry &lt;3") {
		t.Fatalf("text not escaped: %s", gotBody)
	}
}

func TestAzureRejectsVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewAzureProvider(ProviderConfig{})
	p.endpoint = srv.URL

	_, err := p.Synthesize(context.Background(), "hi", Voice{ID: "xx"})
	if err == nil {
		t.Fatal("expected error")
	}
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		t.Fatalf("400 should not be retryable: %v", err)
	}
}

func TestWithRetryStopsOnPlainError(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &RetryableError{StatusCode: 503}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}
