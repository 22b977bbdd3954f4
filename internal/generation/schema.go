package generation

import "encoding/json"

// ArticleSchema declares the structured output contract for single-title
// generation runs.
var ArticleSchema = json.RawMessage(`{
  "name": "generated_article",
  "schema": {
    "type": "object",
    "properties": {
      "summary": {"type": "string"},
      "content": {"type": "string"},
      "keyTakeaways": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 5},
      "tags": {"type": "array", "items": {"type": "string"}, "minItems": 5, "maxItems": 5}
    },
    "required": ["summary", "content", "keyTakeaways", "tags"]
  }
}`)

// DigestSchema extends the article contract with the fields the daily digest
// asks the model to invent: its own title and the categories it covered.
var DigestSchema = json.RawMessage(`{
  "name": "daily_digest",
  "schema": {
    "type": "object",
    "properties": {
      "title": {"type": "string"},
      "summary": {"type": "string"},
      "content": {"type": "string"},
      "keyTakeaways": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 5},
      "tags": {"type": "array", "items": {"type": "string"}, "minItems": 5, "maxItems": 5},
      "categories": {"type": "array", "items": {"type": "string"}}
    },
    "required": ["title", "summary", "content", "keyTakeaways", "tags", "categories"]
  }
}`)
