package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/venuefinder/ai"
)

const sentimentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "index": {"type": "integer", "minimum": 0},
          "label": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        },
        "required": ["index", "label", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["results"],
  "additionalProperties": false
}`

const sentimentPromptTemplate = `Classify the sentiment of each customer review of a cafe, restaurant, shop or
other venue. Reviews are written in Russian or Kazakh, sometimes mixed with English.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Return exactly one result per review, with "index" equal to the number in square brackets before the review.
- "label" must be exactly one of: %s.
- "confidence" is your probability for the chosen label, from 0 to 1.
- Judge the author's opinion of the venue, not the topic. Complaints, warnings and regret are negative.
- Purely factual statements without an opinion are neutral.

Example:
Input:
[0] Очень вкусный кофе и приветливый бариста, рекомендую!
[1] Обслуживание ужасное, ждали час. Больше не придём.
[2] Работает с 9 до 21.
Output:
{
  "results": [
    {"index":0,"label":"positive","confidence":0.96},
    {"index":1,"label":"negative","confidence":0.95},
    {"index":2,"label":"neutral","confidence":0.8}
  ]
}`

// buildSystemPrompt creates the system prompt with the label vocabulary embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(sentimentPromptTemplate,
		sentimentResponseSchema,
		strings.Join(ai.SentimentLabels, ", "))
}

// buildUserPrompt numbers the reviews so results can be matched by index.
func buildUserPrompt(texts []string) string {
	var b strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&b, "[%d] %s\n", i, t)
	}
	return b.String()
}
