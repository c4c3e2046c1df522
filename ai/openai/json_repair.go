// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

// repairJSON fixes two mistakes small models make in JSON output: keys
// missing their opening quote (`, type":` becomes `, "type":`) and
// trailing commas before a closing bracket. String contents are left alone.
func repairJSON(s string) string {
	return dropTrailingCommas(quoteKeys(s))
}

func quoteKeys(s string) string {
	src := []rune(s)
	fixed := make([]rune, 0, len(src)+16)
	inString := false

	for i := 0; i < len(src); {
		ch := src[i]
		if inString {
			fixed = append(fixed, ch)
			if ch == '\\' && i+1 < len(src) {
				fixed = append(fixed, src[i+1])
				i += 2
				continue
			}
			if ch == '"' {
				inString = false
			}
			i++
			continue
		}

		if ch == '"' {
			inString = true
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(src) && isSpace(src[i]) {
			fixed = append(fixed, src[i])
			i++
		}
		if i >= len(src) || !isLetter(src[i]) {
			continue
		}

		// A run of key characters closed by `":` is a key missing its
		// opening quote.
		end := i
		for end < len(src) && (isLetter(src[end]) || src[end] == '_') {
			end++
		}
		if end+1 < len(src) && src[end] == '"' && src[end+1] == ':' {
			fixed = append(fixed, '"')
			fixed = append(fixed, src[i:end+1]...)
			i = end + 1
		}
	}
	return string(fixed)
}

func dropTrailingCommas(s string) string {
	src := []rune(s)
	fixed := make([]rune, 0, len(src))
	inString := false

	for i := 0; i < len(src); i++ {
		ch := src[i]
		if inString {
			fixed = append(fixed, ch)
			if ch == '\\' && i+1 < len(src) {
				i++
				fixed = append(fixed, src[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
		}
		if ch == ',' {
			j := i + 1
			for j < len(src) && isSpace(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				continue
			}
		}
		fixed = append(fixed, ch)
	}
	return string(fixed)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
