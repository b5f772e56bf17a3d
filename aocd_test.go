package aocd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aocd/cache"
	"aocd/classify"
	"aocd/client"
	"aocd/session"
)

const (
	rightAnswerBody  = "<article><p>That's the right answer!  You are one gold star closer.</p></article>"
	wrongAnswerBody  = "<article><p>That's not the right answer; your answer is too low.</p></article>"
	tooRecentlyBody  = "<article><p>You gave an answer too recently; you have to wait after submitting an answer before trying again.  You have 2m left to wait.</p></article>"
	alreadyDoneBody  = "<article><p>You don't seem to be solving the right level.  Did you already complete it?</p></article>"
	unrecognizedBody = "<html>The elves are refactoring, come back later.</html>"
)

// judge is a scripted stand-in for the remote service.
type judge struct {
	mu        sync.Mutex
	input     string
	inputCode int      // non-zero forces an error status on fetch
	bodies    []string // successive submission responses; last one repeats
	fetches   int
	submits   int
	answers   []string
}

func (j *judge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/input"):
		j.fetches++

		if j.inputCode != 0 {
			http.Error(w, "Puzzle inputs differ by user.  Please log in.", j.inputCode)
			return
		}

		io.WriteString(w, j.input)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/answer"):
		j.submits++

		_ = r.ParseForm()
		j.answers = append(j.answers, r.PostFormValue("answer"))

		body := unrecognizedBody
		if len(j.bodies) > 0 {
			body = j.bodies[0]
			if len(j.bodies) > 1 {
				j.bodies = j.bodies[1:]
			}
		}

		io.WriteString(w, body)
	default:
		http.NotFound(w, r)
	}
}

func (j *judge) counts() (fetches, submits int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.fetches, j.submits
}

func newTestDriver(t *testing.T, j *judge) *Driver {
	t.Helper()

	server := httptest.NewServer(j)
	t.Cleanup(server.Close)

	token, err := session.New("token-" + t.Name())
	require.NoError(t, err)

	d, err := New(token, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	d.Client.BaseURL = server.URL

	return d
}

// doubler parses the input as an integer and doubles it.
func doubler(input string) string {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		panic(err)
	}

	return strconv.Itoa(2 * n)
}

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{"valid part 1", Key{2015, 1, Part1}, false},
		{"valid part 2", Key{2023, 25, Part2}, false},
		{"year before first event", Key{2014, 1, Part1}, true},
		{"day zero", Key{2020, 0, Part1}, true},
		{"day out of range", Key{2020, 26, Part1}, true},
		{"part zero", Key{2020, 1, 0}, true},
		{"part three", Key{2020, 1, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRun_Correct(t *testing.T) {
	j := &judge{input: "12\n", bodies: []string{rightAnswerBody}}
	d := newTestDriver(t, j)

	key := Key{Year: 2020, Day: 1, Part: Part1}

	v, err := d.Run(context.Background(), key, doubler)
	require.NoError(t, err)
	assert.Equal(t, classify.Correct, v.Kind)

	j.mu.Lock()
	assert.Equal(t, []string{"24"}, j.answers, "computed answer should be submitted")
	j.mu.Unlock()

	solved, err := d.Submissions.IsSolved(2020, 1, 1)
	require.NoError(t, err)
	assert.True(t, solved, "a Correct verdict must mark the record solved")
}

func TestRun_SecondRunStaysLocal(t *testing.T) {
	j := &judge{input: "12\n", bodies: []string{rightAnswerBody}}
	d := newTestDriver(t, j)

	key := Key{Year: 2020, Day: 1, Part: Part1}

	v, err := d.Run(context.Background(), key, doubler)
	require.NoError(t, err)
	require.Equal(t, classify.Correct, v.Kind)

	v, err = d.Run(context.Background(), key, doubler)
	require.NoError(t, err)
	assert.Equal(t, classify.AlreadySolved, v.Kind)

	fetches, submits := j.counts()
	assert.Equal(t, 1, fetches, "input resolution must be a cache hit the second time")
	assert.Equal(t, 1, submits, "a solved part must never be resubmitted")
}

func TestSubmit_AlreadySolvedShortCircuit(t *testing.T) {
	j := &judge{}
	d := newTestDriver(t, j)

	outcome := cache.Outcome{Kind: classify.Correct, SubmittedAt: time.Now()}
	require.NoError(t, d.Submissions.Put(2020, 1, 1, "24", outcome))

	v, err := d.Submit(context.Background(), Key{2020, 1, Part1}, "anything")
	require.NoError(t, err)
	assert.Equal(t, classify.AlreadySolved, v.Kind)

	fetches, submits := j.counts()
	assert.Zero(t, fetches)
	assert.Zero(t, submits, "a solved part short-circuits before the network")
}

func TestSubmit_RateLimited(t *testing.T) {
	j := &judge{bodies: []string{tooRecentlyBody}}
	d := newTestDriver(t, j)

	key := Key{Year: 2020, Day: 1, Part: Part1}

	v, err := d.Submit(context.Background(), key, "24")
	require.NoError(t, err)
	assert.Equal(t, classify.RateLimited, v.Kind)
	assert.Equal(t, 2*time.Minute, v.Wait)

	solved, err := d.Submissions.IsSolved(2020, 1, 1)
	require.NoError(t, err)
	assert.False(t, solved, "a rate limit must not change the solved state")
}

func TestSubmit_KnownIncorrectShortCircuit(t *testing.T) {
	j := &judge{bodies: []string{rightAnswerBody}}
	d := newTestDriver(t, j)

	key := Key{Year: 2020, Day: 1, Part: Part1}

	outcome := cache.Outcome{Kind: classify.Incorrect, SubmittedAt: time.Now()}
	require.NoError(t, d.Submissions.Put(2020, 1, 1, "41", outcome))

	v, err := d.Submit(context.Background(), key, "41")
	require.NoError(t, err)
	assert.Equal(t, classify.Incorrect, v.Kind)

	_, submits := j.counts()
	assert.Zero(t, submits, "a known-wrong answer never reaches the judge")

	// A fresh answer still goes out.
	v, err = d.Submit(context.Background(), key, "42")
	require.NoError(t, err)
	assert.Equal(t, classify.Correct, v.Kind)

	_, submits = j.counts()
	assert.Equal(t, 1, submits)
}

func TestSubmit_LocalCooldown(t *testing.T) {
	j := &judge{}
	d := newTestDriver(t, j)

	now := time.Now()
	d.now = func() time.Time { return now }

	outcome := cache.Outcome{
		Kind:        classify.RateLimited,
		Wait:        2 * time.Minute,
		SubmittedAt: now.Add(-30 * time.Second),
	}
	require.NoError(t, d.Submissions.Put(2020, 1, 1, "24", outcome))

	v, err := d.Submit(context.Background(), Key{2020, 1, Part1}, "24")
	require.NoError(t, err)
	assert.Equal(t, classify.RateLimited, v.Kind)
	assert.Equal(t, 90*time.Second, v.Wait, "remaining cooldown is computed locally")

	_, submits := j.counts()
	assert.Zero(t, submits)
}

func TestSubmit_WaitOnRateLimitResubmitsOnce(t *testing.T) {
	j := &judge{bodies: []string{tooRecentlyBody, rightAnswerBody}}
	d := newTestDriver(t, j)
	d.WaitOnRateLimit = true

	var slept []time.Duration
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return nil
	}

	v, err := d.Submit(context.Background(), Key{2020, 1, Part1}, "24")
	require.NoError(t, err)
	assert.Equal(t, classify.Correct, v.Kind)

	_, submits := j.counts()
	assert.Equal(t, 2, submits)
	assert.Equal(t, []time.Duration{2 * time.Minute}, slept, "the stated delay must be honored before the single retry")
}

func TestSubmit_WaitOnRateLimitGivesUpAfterOneRetry(t *testing.T) {
	j := &judge{bodies: []string{tooRecentlyBody}}
	d := newTestDriver(t, j)
	d.WaitOnRateLimit = true
	d.sleep = func(ctx context.Context, dur time.Duration) error { return nil }

	v, err := d.Submit(context.Background(), Key{2020, 1, Part1}, "24")
	require.NoError(t, err)
	assert.Equal(t, classify.RateLimited, v.Kind)

	_, submits := j.counts()
	assert.Equal(t, 2, submits, "never more than one resubmission per call")
}

func TestSubmit_UnknownResponse(t *testing.T) {
	j := &judge{bodies: []string{unrecognizedBody}}
	d := newTestDriver(t, j)

	key := Key{Year: 2020, Day: 1, Part: Part1}

	v, err := d.Submit(context.Background(), key, "24")
	require.NoError(t, err, "an unrecognized body is reportable, not fatal")
	assert.Equal(t, classify.Unknown, v.Kind)
	assert.Equal(t, unrecognizedBody, v.Detail)

	// Nothing is recorded for an outcome we could not interpret.
	rec, err := d.Submissions.Get(2020, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, rec.Answers)
}

func TestRun_AuthErrorLeavesNoCacheEntry(t *testing.T) {
	j := &judge{inputCode: http.StatusBadRequest}
	d := newTestDriver(t, j)

	_, err := d.Run(context.Background(), Key{2020, 1, Part1}, doubler)
	require.Error(t, err)

	var authErr *client.AuthError
	require.ErrorAs(t, err, &authErr)

	assert.NoFileExists(t, d.Inputs.Path(2020, 1))

	_, submits := j.counts()
	assert.Zero(t, submits, "a failed input resolution never reaches submission")
}

func TestRunTests(t *testing.T) {
	ch := Challenge{
		Key:   Key{2020, 1, Part1},
		Solve: doubler,
		Tests: []TestCase{
			{Name: "example one", Input: "2", Want: "4"},
			{Name: "example two", Input: "21", Want: "42"},
		},
	}

	assert.NoError(t, RunTests(ch))

	ch.Tests = append(ch.Tests, TestCase{Name: "bad example", Input: "3", Want: "7"})

	err := RunTests(ch)
	require.Error(t, err)

	var failure *TestFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "bad example", failure.Name)
	assert.Equal(t, "7", failure.Want)
	assert.Equal(t, "6", failure.Got)
}

func TestRunChallenge_FailingTableStaysOffline(t *testing.T) {
	j := &judge{input: "12\n", bodies: []string{rightAnswerBody}}
	d := newTestDriver(t, j)

	ch := Challenge{
		Key:   Key{2020, 1, Part1},
		Solve: doubler,
		Tests: []TestCase{{Name: "wrong expectation", Input: "2", Want: "5"}},
	}

	_, err := d.RunChallenge(context.Background(), ch)
	require.Error(t, err)

	var failure *TestFailure
	assert.ErrorAs(t, err, &failure)

	fetches, submits := j.counts()
	assert.Zero(t, fetches)
	assert.Zero(t, submits)
}

func TestRunChallenge_PassingTableSubmits(t *testing.T) {
	j := &judge{input: "12\n", bodies: []string{rightAnswerBody}}
	d := newTestDriver(t, j)

	ch := Challenge{
		Key:   Key{2020, 1, Part1},
		Solve: doubler,
		Tests: []TestCase{{Name: "example", Input: "2", Want: "4"}},
	}

	v, err := d.RunChallenge(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, classify.Correct, v.Kind)
}

func TestSubmit_ResubmitAfterAlreadyCompleteResponse(t *testing.T) {
	// Submitting to a part finished from another machine: the judge says
	// "already complete", and the record remembers it.
	j := &judge{bodies: []string{alreadyDoneBody}}
	d := newTestDriver(t, j)

	key := Key{Year: 2020, Day: 1, Part: Part2}

	v, err := d.Submit(context.Background(), key, "24")
	require.NoError(t, err)
	assert.Equal(t, classify.AlreadySolved, v.Kind)

	// The same call again is answered locally.
	v, err = d.Submit(context.Background(), key, "24")
	require.NoError(t, err)
	assert.Equal(t, classify.AlreadySolved, v.Kind)

	_, submits := j.counts()
	assert.Equal(t, 1, submits)
}

func TestSubmit_IncorrectRecordsHintedVerdict(t *testing.T) {
	j := &judge{bodies: []string{wrongAnswerBody}}
	d := newTestDriver(t, j)

	v, err := d.Submit(context.Background(), Key{2020, 1, Part1}, "10")
	require.NoError(t, err)
	assert.Equal(t, classify.Incorrect, v.Kind)
	assert.Equal(t, "too low", v.Detail)

	rec, err := d.Submissions.Get(2020, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, classify.Incorrect, rec.Answers["10"].Kind)
}
