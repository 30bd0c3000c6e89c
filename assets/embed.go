package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed wordbank.txt
var FS embed.FS

// BankLines returns the non-comment lines of the embedded default word
// bank. Parsing into categories happens in the words package.
func BankLines() ([]string, error) {
	f, err := FS.Open("wordbank.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
