// Package classifier decides whether an utterance asks something or orders something.
package classifier

import "strings"

// Kind is the coarse category of an utterance
type Kind string

const (
	Question Kind = "QUESTION"
	Command  Kind = "COMMAND"
	Unknown  Kind = "UNKNOWN"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// Keyword tables are matched as lowercase substrings, so overlapping entries
// hit more than once: "siapa" also counts "apa" and "manajer" counts "mana".
var (
	statusCheckTriggers = []string{"cek", "check"}

	questionWords = []string{
		"siapa", "apa", "berapa", "kapan", "dimana", "mana", "bagaimana", "kenapa",
		"sisa", "status", "email", "jabatan", "riwayat", "daftar",
		"who", "what", "how many", "when", "where", "balance", "title", "history", "list",
	}

	commandWords = []string{
		"ajukan", "apply", "tolong", "jadwalkan", "schedule", "buat", "bikinin",
		"set", "atur", "submit", "please",
	}

	actionVerbs = []string{
		"ajukan", "apply", "jadwalkan", "schedule", "buat", "submit",
		"approve", "reject", "cancel", "batalkan", "setujui", "tolak",
		"tambah", "update", "pindahkan",
	}
)

// Classify applies the ordered keyword rules; the first rule that fires wins.
// It is a pure function of its input.
func Classify(utterance string) Kind {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return Unknown
	}

	// checking reads like a query but is handled as an imperative
	if containsAny(lower, statusCheckTriggers) {
		return Command
	}

	if strings.Contains(lower, "?") {
		return Question
	}

	questionHits := countHits(lower, questionWords)
	commandHits := countHits(lower, commandWords)
	if questionHits > commandHits {
		return Question
	}
	if commandHits > 0 {
		return Command
	}

	if containsAny(lower, actionVerbs) {
		return Command
	}

	if questionHits > 0 {
		return Question
	}
	return Unknown
}

func countHits(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
