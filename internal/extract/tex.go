package extract

import (
	"fmt"
	"strings"
)

// verbatimEnvs are environments whose bodies are not scanned for structure.
var verbatimEnvs = map[string]bool{
	"verbatim":   true,
	"verbatim*":  true,
	"Verbatim":   true,
	"lstlisting": true,
	"minted":     true,
	"comment":    true,
}

// extractTeX returns the markup source once it passes a structural check:
// braces balance and every \begin{env} has a matching \end{env}.
func extractTeX(data []byte) (string, error) {
	src, err := decodeText(FormatTeX, data)
	if err != nil {
		return "", err
	}
	if err := checkTeX(src); err != nil {
		return "", corrupt(FormatTeX, "malformed markup", err)
	}
	return src, nil
}

func checkTeX(src string) error {
	var (
		depth int
		envs  []string
		line  = 1
	)
	for i := 0; i < len(src); i++ {
		switch ch := src[i]; ch {
		case '\n':
			line++
		case '%':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			line++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("line %d: unexpected '}'", line)
			}
		case '\\':
			if i+1 >= len(src) {
				return nil
			}
			if !isLetter(src[i+1]) {
				i++
				continue
			}
			j := i + 1
			for j < len(src) && isLetter(src[j]) {
				j++
			}
			cmd := src[i+1 : j]
			i = j - 1
			if cmd == "verb" || cmd == "lstinline" {
				end, ok := skipInlineVerbatim(src, j, cmd == "verb")
				if !ok {
					return fmt.Errorf("line %d: unterminated \\%s", line, cmd)
				}
				i = end
				continue
			}
			if cmd != "begin" && cmd != "end" {
				continue
			}
			name, next, ok := readGroup(src, j)
			if !ok {
				return fmt.Errorf("line %d: \\%s without environment name", line, cmd)
			}
			i = next - 1
			if cmd == "begin" {
				if verbatimEnvs[name] {
					end := strings.Index(src[next:], `\end{`+name+`}`)
					if end < 0 {
						return fmt.Errorf("line %d: unterminated %s environment", line, name)
					}
					line += strings.Count(src[next:next+end], "\n")
					i = next + end + len(`\end{`+name+`}`) - 1
					continue
				}
				envs = append(envs, name)
				continue
			}
			if len(envs) == 0 {
				return fmt.Errorf("line %d: \\end{%s} without \\begin", line, name)
			}
			if top := envs[len(envs)-1]; top != name {
				return fmt.Errorf("line %d: \\end{%s} closes \\begin{%s}", line, name, top)
			}
			envs = envs[:len(envs)-1]
		}
	}
	if depth != 0 {
		return fmt.Errorf("%d unclosed '{'", depth)
	}
	if len(envs) > 0 {
		return fmt.Errorf("unclosed environment %q", envs[len(envs)-1])
	}
	return nil
}

// skipInlineVerbatim returns the index of the closing delimiter of an
// inline verbatim argument starting at pos. \verb takes an optional star and
// \lstinline an optional [options] group before the delimiter.
func skipInlineVerbatim(src string, pos int, star bool) (int, bool) {
	if star && pos < len(src) && src[pos] == '*' {
		pos++
	}
	if !star && pos < len(src) && src[pos] == '[' {
		end := strings.IndexByte(src[pos:], ']')
		if end < 0 {
			return 0, false
		}
		pos += end + 1
	}
	if pos >= len(src) || src[pos] == '\n' || src[pos] == ' ' {
		return 0, false
	}
	delim := src[pos]
	if delim == '{' {
		delim = '}'
	}
	end := strings.IndexByte(src[pos+1:], delim)
	if end < 0 || strings.Contains(src[pos+1:pos+1+end], "\n") {
		return 0, false
	}
	return pos + 1 + end, true
}

// readGroup reads "{name}" starting at pos, skipping leading spaces.
func readGroup(src string, pos int) (string, int, bool) {
	for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t') {
		pos++
	}
	if pos >= len(src) || src[pos] != '{' {
		return "", pos, false
	}
	end := strings.IndexByte(src[pos:], '}')
	if end < 0 {
		return "", pos, false
	}
	name := strings.TrimSpace(src[pos+1 : pos+end])
	if name == "" {
		return "", pos, false
	}
	return name, pos + end + 1, true
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
