package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/mediakg/ai"
)

const keywordPromptTemplate = `You are an information extraction system. Read a short description of a media
file and return a JSON object with the attributes it mentions.

Keys:
- type: kind of content (text, image, audio or video). This key is REQUIRED.
- activity: what is happening (cooking, taking photos, hiking).
- location: a specific place (a park, a city, a country).
- event: a specific occasion (birthday party, wedding).
- date: when, as year-month-day, year-month or year.
- people: who is mentioned (me, friends, family).
- emotion: the dominant mood (happy, sad).
- device: the capture device (phone, camera).
- weather: the weather (sunny, rainy).
- object: the main objects (cherry blossom, cake).

Rules:
- Only use these keys: %s.
- Use the exact words from the description as values.
- Omit keys the description does not mention.
- Output ONLY the JSON object. No explanation, no code fences.

Example 1:
Input: "Photo of cherry blossoms at Yen So park in March 2021, with me and my friends"
Output:
{
  "type": "image",
  "activity": "photographing cherry blossoms",
  "location": "Yen So park",
  "date": "2021-03",
  "people": ["me", "friends"]
}

Example 2:
Input: "Video of my happy birthday party, shot on my phone in October 2023, sunny day"
Output:
{
  "type": "video",
  "event": "birthday party",
  "emotion": "happy",
  "people": ["me"],
  "device": "phone",
  "date": "2023-10",
  "weather": "sunny"
}`

const detectionPrompt = `List the distinct objects visible in this image and return them as JSON.

Output ONLY valid JSON of the form:
{"objects":[{"label":"dog","confidence":0.92,"box":[x1,y1,x2,y2]}]}

Rules:
- label is a lowercase singular noun.
- confidence is a number from 0 to 1.
- box is the bounding box in pixels; use [0,0,0,0] if unknown.
- One entry per instance. If nothing is visible, return {"objects":[]}.`

func buildKeywordPrompt() string {
	return fmt.Sprintf(keywordPromptTemplate, strings.Join(ai.KeywordKeys, ", "))
}
