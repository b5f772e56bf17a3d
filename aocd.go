// Package aocd automates the Advent of Code workflow: resolve the puzzle
// input (cached locally after the first fetch), run a solution against it,
// submit the answer to the judge, and classify the response.
//
// Basic use:
//
//	token, _ := session.Load(".session")
//	driver, _ := aocd.New(token, ".")
//	defer driver.Close()
//
//	verdict, err := driver.Run(ctx, aocd.Key{Year: 2020, Day: 1, Part: aocd.Part1}, solve)
//
// The driver never prints or exits; presentation of the verdict belongs to
// the caller.
package aocd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"aocd/cache"
	"aocd/classify"
	"aocd/client"
	"aocd/session"
)

// FirstYear is the first Advent of Code event.
const FirstYear = 2015

// Part identifies which half of a day's puzzle an answer targets.
type Part int

const (
	Part1 Part = 1
	Part2 Part = 2
)

// Key identifies one challenge instance. Immutable once constructed.
type Key struct {
	Year int
	Day  int
	Part Part
}

// Validate checks the key against the event's calendar bounds.
func (k Key) Validate() error {
	if k.Year < FirstYear {
		return fmt.Errorf("invalid year %d: events start in %d", k.Year, FirstYear)
	}

	if k.Day < 1 || k.Day > 25 {
		return fmt.Errorf("invalid day %d: must be 1-25", k.Day)
	}

	if k.Part != Part1 && k.Part != Part2 {
		return fmt.Errorf("invalid part %d: must be 1 or 2", k.Part)
	}

	return nil
}

func (k Key) String() string {
	return fmt.Sprintf("%d day %d part %d", k.Year, k.Day, k.Part)
}

// Solution is the user-provided pure transformation from puzzle input to
// answer. Panics inside it are not recovered; a broken solution is a user
// bug to surface immediately, not mask.
type Solution func(input string) string

// TestCase is one local example: a named input with its expected answer.
type TestCase struct {
	Name  string
	Input string
	Want  string
}

// TestFailure reports the first local test case a solution got wrong.
type TestFailure struct {
	Name string
	Want string
	Got  string
}

func (e *TestFailure) Error() string {
	return fmt.Sprintf("test %q failed: got %q, want %q", e.Name, e.Got, e.Want)
}

// Challenge couples a key with its solution and local test table.
type Challenge struct {
	Key   Key
	Solve Solution
	Tests []TestCase
}

// RunTests runs the challenge's test table and returns a TestFailure for
// the first mismatch. No I/O is involved.
func RunTests(ch Challenge) error {
	for _, tc := range ch.Tests {
		if got := ch.Solve(tc.Input); got != tc.Want {
			return &TestFailure{Name: tc.Name, Want: tc.Want, Got: got}
		}
	}

	return nil
}

// Driver ties the cache, judge client and classifier together.
// Fields may be adjusted between New and first use.
type Driver struct {
	// Client talks to the judge.
	Client *client.Client

	// Inputs is the read-through puzzle input cache.
	Inputs *cache.Inputs

	// Submissions remembers previous verdicts so known outcomes never
	// reach the judge again. Nil disables the memory.
	Submissions *cache.Submissions

	// Patterns classifies judge responses. The zero value means the
	// built-in table.
	Patterns classify.Patterns

	// WaitOnRateLimit makes Submit sleep out one judge cooldown and
	// resubmit once instead of surfacing the RateLimited verdict.
	WaitOnRateLimit bool

	// Injection points for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a driver storing state under dir: puzzle inputs in
// dir/inputs, submission records in dir/cache.
func New(token session.Token, dir string) (*Driver, error) {
	if dir == "" {
		dir = "."
	}

	subs, err := cache.OpenSubmissions(filepath.Join(dir, "cache", cache.DefaultDBFile))
	if err != nil {
		return nil, err
	}

	return &Driver{
		Client:      client.New(token),
		Inputs:      cache.NewInputs(filepath.Join(dir, "inputs")),
		Submissions: subs,
		Patterns:    classify.DefaultPatterns(),
	}, nil
}

// Close releases the submission store.
func (d *Driver) Close() error {
	if d.Submissions != nil {
		return d.Submissions.Close()
	}

	return nil
}

// Input resolves the puzzle input for (year, day) through the cache,
// fetching from the judge only on a miss.
func (d *Driver) Input(ctx context.Context, year, day int) (string, error) {
	return d.Inputs.Get(ctx, year, day, d.Client.FetchInput)
}

// Run executes the full pipeline for key: resolve input, compute the
// answer, submit it (unless a local record already knows the outcome) and
// classify the response.
func (d *Driver) Run(ctx context.Context, key Key, solve Solution) (classify.Verdict, error) {
	if err := key.Validate(); err != nil {
		return classify.Verdict{}, err
	}

	input, err := d.Input(ctx, key.Year, key.Day)
	if err != nil {
		return classify.Verdict{}, err
	}

	answer := solve(input)

	return d.Submit(ctx, key, answer)
}

// RunChallenge runs the challenge's local test table and, only if every
// case passes, proceeds as Run. A failing table returns the TestFailure
// without touching the network.
func (d *Driver) RunChallenge(ctx context.Context, ch Challenge) (classify.Verdict, error) {
	if err := RunTests(ch); err != nil {
		return classify.Verdict{}, err
	}

	return d.Run(ctx, ch.Key, ch.Solve)
}

// Submit submits a precomputed answer for key and returns the classified
// verdict.
//
// Local short-circuits, in order: a part already recorded as solved
// returns AlreadySolved; an answer already recorded as Incorrect returns
// Incorrect; a recorded cooldown that has not yet elapsed returns
// RateLimited with the remaining wait (or is slept out when
// WaitOnRateLimit is set). None of these touch the judge.
//
// All submissions sharing a session credential are serialized by a
// process-global lock, because the judge's cooldown is per-account.
func (d *Driver) Submit(ctx context.Context, key Key, answer string) (classify.Verdict, error) {
	if err := key.Validate(); err != nil {
		return classify.Verdict{}, err
	}

	var pending time.Duration

	if d.Submissions != nil {
		rec, err := d.Submissions.Get(key.Year, key.Day, int(key.Part))
		if err != nil {
			return classify.Verdict{}, err
		}

		if rec.Solved {
			return classify.Verdict{Kind: classify.AlreadySolved}, nil
		}

		if outcome, ok := rec.Answers[answer]; ok {
			switch outcome.Kind {
			case classify.Correct, classify.AlreadySolved:
				return classify.Verdict{Kind: classify.AlreadySolved}, nil
			case classify.Incorrect:
				return classify.Verdict{Kind: classify.Incorrect}, nil
			case classify.RateLimited:
				pending = outcome.Remaining(d.clock()())
			}
		}
	}

	mu := submitLock(d.Client.Token)
	mu.Lock()
	defer mu.Unlock()

	if pending > 0 {
		if !d.WaitOnRateLimit {
			return classify.Verdict{Kind: classify.RateLimited, Wait: pending}, nil
		}

		if err := d.wait(ctx, pending); err != nil {
			return classify.Verdict{}, err
		}
	}

	retried := false

	for {
		v, err := d.submitOnce(ctx, key, answer)
		if err != nil {
			return classify.Verdict{}, err
		}

		if v.Kind == classify.RateLimited && d.WaitOnRateLimit && !retried {
			retried = true

			if err := d.wait(ctx, v.Wait); err != nil {
				return classify.Verdict{}, err
			}

			continue
		}

		return v, nil
	}
}

// submitOnce performs one judge submission, classifies the body and
// records the outcome.
func (d *Driver) submitOnce(ctx context.Context, key Key, answer string) (classify.Verdict, error) {
	body, err := d.Client.SubmitAnswer(ctx, key.Year, key.Day, int(key.Part), answer)
	if err != nil {
		return classify.Verdict{}, err
	}

	v := d.patterns().Classify(body)

	if d.Submissions != nil && v.Kind != classify.Unknown {
		outcome := cache.Outcome{
			Kind:        v.Kind,
			Wait:        v.Wait,
			SubmittedAt: d.clock()(),
		}

		if err := d.Submissions.Put(key.Year, key.Day, int(key.Part), answer, outcome); err != nil {
			return v, err
		}
	}

	return v, nil
}

func (d *Driver) patterns() classify.Patterns {
	p := d.Patterns
	if len(p.AlreadySolved)+len(p.Correct)+len(p.Incorrect)+len(p.RateLimited) == 0 {
		return classify.DefaultPatterns()
	}

	return p
}

func (d *Driver) clock() func() time.Time {
	if d.now != nil {
		return d.now
	}

	return time.Now
}

// wait sleeps for the given duration respecting context cancellation.
func (d *Driver) wait(ctx context.Context, duration time.Duration) error {
	if d.sleep != nil {
		return d.sleep(ctx, duration)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submitLocks serializes submissions per session credential across all
// drivers in the process.
var submitLocks sync.Map

func submitLock(token session.Token) *sync.Mutex {
	mu, _ := submitLocks.LoadOrStore(token, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
