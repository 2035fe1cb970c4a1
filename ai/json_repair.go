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

package ai

// repairJSON fixes keys that lost their opening quote in model output.
// Example: `{"a": 1, type": "x"}` becomes `{"a": 1, "type": "x"}`.
func repairJSON(s string) string {
	src := []rune(s)
	out := make([]rune, 0, len(src)+16)

	for i := 0; i < len(src); {
		ch := src[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(src) && isSpace(src[i]) {
			out = append(out, src[i])
			i++
		}
		if i >= len(src) || src[i] == '"' || !isLetter(src[i]) {
			continue
		}

		start := i
		for i < len(src) && (isLetter(src[i]) || src[i] == '_') {
			i++
		}
		if i+1 < len(src) && src[i] == '"' && src[i+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, src[start:i]...)
	}

	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
