package backends

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/systmms/kpasscli/internal/backends/contracts"
)

// attributeLine matches one attribute of `security dump-keychain` output,
// for example:
//
//	"svce"<blob>="github.com"
//	"acct"<blob>=0x616C696365  "alice"
//	"labl"<blob>=<NULL>
var attributeLine = regexp.MustCompile(`^\s*"(\w{4})"<\w+>=(.*)$`)

// parseDumpKeychain extracts generic password items from the output of
// `security dump-keychain`. Internet passwords, certificates and keys are
// skipped, as are items without a service.
func parseDumpKeychain(out []byte) []contracts.KeychainItem {
	var (
		items   []contracts.KeychainItem
		current contracts.KeychainItem
		class   string
	)

	flush := func() {
		if class == "genp" && current.Service != "" {
			items = append(items, current)
		}
		current = contracts.KeychainItem{}
		class = ""
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "keychain:") {
			flush()
			continue
		}
		if strings.HasPrefix(line, "class:") {
			class = decodeAttributeValue(strings.TrimSpace(strings.TrimPrefix(line, "class:")))
			continue
		}

		m := attributeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "svce":
			current.Service = decodeAttributeValue(m[2])
		case "acct":
			current.Account = decodeAttributeValue(m[2])
		case "labl":
			current.Label = decodeAttributeValue(m[2])
		}
	}
	flush()

	return items
}

// decodeAttributeValue handles the three value encodings the security tool
// prints: a quoted string, a hex blob optionally followed by its quoted
// rendering, and <NULL>.
func decodeAttributeValue(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "<NULL>":
		return ""
	case strings.HasPrefix(raw, `"`):
		return strings.TrimSuffix(strings.TrimPrefix(raw, `"`), `"`)
	case strings.HasPrefix(raw, "0x"):
		hexPart, _, _ := strings.Cut(strings.TrimPrefix(raw, "0x"), " ")
		decoded, err := hex.DecodeString(hexPart)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(decoded), "\x00")
	default:
		return raw
	}
}
