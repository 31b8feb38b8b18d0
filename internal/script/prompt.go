package script

import "fmt"

const systemPrompt = `You are a professional podcast scriptwriter. You write conversations between
Priya (female, speaker "P1") and Arjun (male, speaker "P2"). They must alternate speaking.
Respond with valid JSON only.`

// maxScriptSource caps how much source content is sent to the model.
const maxScriptSource = 2000

func buildUserPrompt(content string) string {
	return fmt.Sprintf(`Create a professional podcast conversation between exactly two hosts discussing:

%s

HOSTS:
- Priya (P1, female): the main host. Opens with a welcome, introduces topics and asks questions.
- Arjun (P2, male): the co-host. Provides explanations and insights.

RULES:
1. Priya starts and the hosts alternate on every line
2. Keep it professional and conversational, mostly English with light Hindi (Roman script) expressions
3. Short reactions ("Hmmm...", "Acccha...", "Ohh, I see!") may open a reply
4. End with a proper conclusion after 8-10 exchanges

OUTPUT FORMAT:
Return ONLY a JSON object:
{"script": [
  {"speaker": "P1", "text": "Welcome to our podcast..."},
  {"speaker": "P2", "text": "Absolutely, Priya..."}
]}`, truncateRunes(content, maxScriptSource))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
