package dialogue

import "strings"

// maxGreetingLen bounds how long a message can be and still count as a bare
// greeting. "Oi, tudo bem?" qualifies; a paragraph that happens to open with
// "oi" does not.
const maxGreetingLen = 25

// Single-word greetings require a whole-token match ("oi" must not fire
// inside "hoje"); multi-word ones match by containment.
var greetingWords = map[string]bool{
	"oi": true, "oii": true, "oie": true, "ola": true, "olaa": true,
	"opa": true, "eai": true, "salve": true, "hey": true, "hi": true,
	"hello": true, "alo": true,
}

var greetingPhrases = []string{
	"bom dia", "boa tarde", "boa noite", "tudo bem", "td bem", "e ai",
}

// IsGreeting reports whether the text is a short bare greeting. Patients
// re-greet mid-flow all the time; dispatching "oi" as the answer to a pending
// question would derail the session.
func IsGreeting(text string) bool {
	if len([]rune(strings.TrimSpace(text))) > maxGreetingLen {
		return false
	}
	m := matchable(text)
	if m == "" {
		return false
	}
	for _, token := range strings.Fields(m) {
		if greetingWords[token] {
			return true
		}
	}
	for _, phrase := range greetingPhrases {
		if strings.Contains(m, phrase) {
			return true
		}
	}
	return false
}
