package tts

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apresai/podcast-studio/internal/script"
)

const (
	azureDefaultRegion   = "centralindia"
	azureEndpointFormat  = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"
	azureOutputFormat    = "audio-24khz-48kbitrate-mono-mp3"
	azureUserAgent       = "podcast-studio"
	azureDefaultLanguage = "en-US"
)

// AzureProvider implements Provider using the Azure Speech REST API, which
// serves the same neural voices as the Edge read-aloud service.
type AzureProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewAzureProvider(cfg ProviderConfig) *AzureProvider {
	region := cfg.AzureRegion
	if region == "" {
		region = azureDefaultRegion
	}
	return &AzureProvider{
		apiKey:     cfg.AzureKey,
		endpoint:   fmt.Sprintf(azureEndpointFormat, region),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *AzureProvider) Name() string { return "azure" }

func (p *AzureProvider) Voices() []VoiceInfo { return azureAvailableVoices() }

func (p *AzureProvider) Synthesize(ctx context.Context, text string, voice Voice) (AudioResult, error) {
	body, err := buildSSML(text, voice.ID)
	if err != nil {
		return AudioResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return AudioResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	req.Header.Set("User-Agent", azureUserAgent)

	res, err := p.httpClient.Do(req)
	if err != nil {
		return AudioResult{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests ||
		res.StatusCode >= http.StatusInternalServerError {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, &RetryableError{
			StatusCode: res.StatusCode,
			Body:       string(errBody),
		}
	}

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, fmt.Errorf("Azure TTS error (status %d, voice %s): %s", res.StatusCode, voice.ID, string(errBody))
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read response: %w", err)
	}

	return AudioResult{Data: data, Format: FormatMP3}, nil
}

func (p *AzureProvider) Close() error { return nil }

func buildSSML(text, voiceID string) ([]byte, error) {
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return nil, fmt.Errorf("escape text: %w", err)
	}
	var attr strings.Builder
	if err := xml.EscapeText(&attr, []byte(voiceID)); err != nil {
		return nil, fmt.Errorf("escape voice: %w", err)
	}
	lang := languageCode(voiceID, azureDefaultLanguage)
	ssml := fmt.Sprintf(`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		lang, attr.String(), escaped.String())
	return []byte(ssml), nil
}

// languageCode extracts the "xx-YY" locale prefix from voice ids such as
// "en-IN-NeerjaNeural" or "hi-IN-Wavenet-A".
func languageCode(voiceID, fallback string) string {
	parts := strings.SplitN(voiceID, "-", 3)
	if len(parts) < 3 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return fallback
	}
	return parts[0] + "-" + parts[1]
}

func azureAvailableVoices() []VoiceInfo {
	f, m := script.GenderFemale, script.GenderMale
	return []VoiceInfo{
		{ID: "en-IN-NeerjaNeural", Name: "Neerja", Gender: f, Language: "English", Description: "Indian English, warm host"},
		{ID: "en-IN-PrabhatNeural", Name: "Prabhat", Gender: m, Language: "English", Description: "Indian English, clear explainer"},
		{ID: "hi-IN-SwaraNeural", Name: "Swara", Gender: f, Language: "Hindi"},
		{ID: "hi-IN-MadhurNeural", Name: "Madhur", Gender: m, Language: "Hindi"},
		{ID: "ta-IN-PallaviNeural", Name: "Pallavi", Gender: f, Language: "Tamil"},
		{ID: "ta-IN-ValluvarNeural", Name: "Valluvar", Gender: m, Language: "Tamil"},
		{ID: "te-IN-ShrutiNeural", Name: "Shruti", Gender: f, Language: "Telugu"},
		{ID: "te-IN-MohanNeural", Name: "Mohan", Gender: m, Language: "Telugu"},
	}
}
