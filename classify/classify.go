// Package classify turns the judge's free-text submission responses into
// structured verdicts.
//
// The judge answers a submission with an HTML page containing a
// human-readable sentence. The wording is owned by the remote service and
// changes over time, so matching is deliberately loose: case-insensitive
// substring checks against a small pattern table, never HTML parsing. The
// table can be replaced at runtime from a config file so new phrasings can
// be picked up without a rebuild. Anything the table does not recognize
// classifies as Unknown carrying the raw body; it is a reportable
// condition, not a guess and not a crash.
package classify

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Kind is the classified outcome of a submission response.
type Kind int

const (
	// Unknown means the body matched no known phrasing.
	Unknown Kind = iota

	// Correct means the answer was accepted.
	Correct

	// Incorrect means the answer was rejected.
	Incorrect

	// AlreadySolved means this part has already been completed.
	AlreadySolved

	// RateLimited means the judge refused the submission because one was
	// made too recently; the verdict carries the wait duration.
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case AlreadySolved:
		return "already solved"
	case RateLimited:
		return "rate limited"
	}

	return "unknown"
}

// Verdict is the structured result of classifying a response body.
type Verdict struct {
	Kind Kind

	// Wait is the cooldown to honor before the next submission.
	// Set only for RateLimited.
	Wait time.Duration

	// Detail carries free-text context: the "too high"/"too low" hint for
	// Incorrect, or the raw body for Unknown.
	Detail string
}

// DefaultWait is the conservative cooldown applied when a rate-limit
// response carries no parseable duration.
const DefaultWait = 60 * time.Second

// Patterns is the table of known judge phrasings, checked in priority
// order: already-solved, correct, incorrect, rate-limited.
type Patterns struct {
	AlreadySolved []string
	Correct       []string
	Incorrect     []string
	RateLimited   []string
}

// Default phrasings observed from the judge. The already-solved checks
// come first because that response also appears when resubmitting a
// correct answer.
var defaultPatterns = Patterns{
	AlreadySolved: []string{
		"did you already complete it",
		"you don't seem to be solving the right level",
	},
	Correct: []string{
		"that's the right answer",
	},
	Incorrect: []string{
		"that's not the right answer",
	},
	RateLimited: []string{
		"you gave an answer too recently",
		"please wait",
	},
}

// DefaultPatterns returns a copy of the built-in pattern table.
func DefaultPatterns() Patterns {
	return defaultPatterns
}

// LoadPatterns reads a pattern table from a config file (yaml, json or
// toml). Keys: already_solved, correct, incorrect, rate_limited; each a
// list of phrases. Missing keys fall back to the built-in phrasings so a
// partial override stays safe.
func LoadPatterns(path string) (Patterns, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Patterns{}, fmt.Errorf("failed to read pattern file: %w", err)
	}

	p := DefaultPatterns()

	if phrases := v.GetStringSlice("already_solved"); len(phrases) > 0 {
		p.AlreadySolved = phrases
	}

	if phrases := v.GetStringSlice("correct"); len(phrases) > 0 {
		p.Correct = phrases
	}

	if phrases := v.GetStringSlice("incorrect"); len(phrases) > 0 {
		p.Incorrect = phrases
	}

	if phrases := v.GetStringSlice("rate_limited"); len(phrases) > 0 {
		p.RateLimited = phrases
	}

	return p, nil
}

// Classify matches body against the built-in pattern table.
func Classify(body string) Verdict {
	return defaultPatterns.Classify(body)
}

// Classify matches body against the table and returns the verdict.
// Matching is case-insensitive; priority follows the table order.
func (p Patterns) Classify(body string) Verdict {
	lower := strings.ToLower(body)

	if containsAny(lower, p.AlreadySolved) {
		return Verdict{Kind: AlreadySolved}
	}

	if containsAny(lower, p.Correct) {
		return Verdict{Kind: Correct}
	}

	if containsAny(lower, p.Incorrect) {
		return Verdict{Kind: Incorrect, Detail: incorrectHint(lower)}
	}

	if containsAny(lower, p.RateLimited) {
		return Verdict{Kind: RateLimited, Wait: ParseWait(lower)}
	}

	return Verdict{Kind: Unknown, Detail: body}
}

func containsAny(lower string, phrases []string) bool {
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}

	return false
}

// incorrectHint extracts the direction hint the judge sometimes includes
// with a rejection.
func incorrectHint(lower string) string {
	switch {
	case strings.Contains(lower, "too high"):
		return "too high"
	case strings.Contains(lower, "too low"):
		return "too low"
	}

	return ""
}

var (
	minutesRx = regexp.MustCompile(`(\d+)\s*(?:minutes?|m)\b`)
	secondsRx = regexp.MustCompile(`(\d+)\s*(?:seconds?|s)\b`)
)

// ParseWait extracts a cooldown duration from text like "you have 4m 52s
// left to wait" or "please wait 2 minutes before trying again". Minutes
// and seconds may appear alone or together. If neither is found the
// conservative DefaultWait is returned; guessing short is what gets
// accounts penalized.
func ParseWait(body string) time.Duration {
	lower := strings.ToLower(body)

	var d time.Duration
	found := false

	if m := minutesRx.FindStringSubmatch(lower); m != nil {
		if n, err := time.ParseDuration(m[1] + "m"); err == nil {
			d += n
			found = true
		}
	}

	if m := secondsRx.FindStringSubmatch(lower); m != nil {
		if n, err := time.ParseDuration(m[1] + "s"); err == nil {
			d += n
			found = true
		}
	}

	if !found {
		return DefaultWait
	}

	return d
}
