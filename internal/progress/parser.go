package progress

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultStatusLookahead is how many lines below a task header are searched
// for a status marker. The value matches the original automation scripts; it
// is plumbed through the configuration rather than hard-coded at call sites.
const DefaultStatusLookahead = 5

// Header shapes accepted by the parser, tried in order; the first match wins
// so a line is never counted twice.
var (
	// "### Phase 2: Title" or "## Step 3: Title"
	phaseHeaderRe = regexp.MustCompile(`^#{1,6}\s+(?:Phase|Step)\s+(\d+)\s*:\s*(.+?)\s*$`)
	// "#### 1. Title"
	numberedHeaderRe = regexp.MustCompile(`^#{1,6}\s+(\d+)\.\s+(.+?)\s*$`)
	// "### ⬜ Step 2: Title" - a header carrying a status glyph. Note the
	// glyph does NOT resolve the task's status; only the lookahead does.
	glyphHeaderRe = regexp.MustCompile(`^#{1,6}\s*(?:🟢|🟡|🔴|⬜)\s*Step\s+(\d+)\s*:\s*(.+?)\s*$`)
)

// statusGlyphs maps document markers to statuses. Checked before keywords.
var statusGlyphs = []struct {
	glyph  string
	status Status
}{
	{"🟢", StatusCompleted},
	{"🟡", StatusInProgress},
	{"🔴", StatusBlocked},
	{"⬜", StatusPending},
}

// statusKeywords is the fallback for documents that spell statuses out.
// in_progress variants come first so "in progress" never resolves as pending
// by way of a looser substring.
var statusKeywords = []struct {
	keyword string
	status  Status
}{
	{"in_progress", StatusInProgress},
	{"in progress", StatusInProgress},
	{"completed", StatusCompleted},
	{"blocked", StatusBlocked},
	{"pending", StatusPending},
}

// ParseFile reads the document at path and returns its eligible tasks.
// A missing or unreadable file yields a ParseError with reason not-found.
func ParseFile(path string, lookahead int) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: ReasonNotFound, Err: err}
	}
	return Parse(path, string(data), lookahead)
}

// Parse scans the document text and returns tasks whose status is pending or
// in_progress, in document order. Parsing and eligibility filtering are fused
// on purpose: tasks without a determinable status are silently dropped, and
// completed/blocked tasks never reach the selector. An empty eligible set is
// reported as a ParseError with reason no-eligible-tasks, which callers treat
// as "work complete".
func Parse(path, text string, lookahead int) ([]Task, error) {
	var eligible []Task
	for _, t := range scan(text, lookahead) {
		if t.Status.Eligible() {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil, &ParseError{Path: path, Reason: ReasonNoEligibleTasks}
	}
	return eligible, nil
}

// ScanFile reads the document at path and returns every task whose status
// resolved, all statuses included. Used by the read-only status surfaces.
func ScanFile(path string, lookahead int) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: ReasonNotFound, Err: err}
	}
	return scan(string(data), lookahead), nil
}

// scan walks the document line by line. For each task header it searches up
// to lookahead subsequent lines for a status marker, stopping early at the
// next task header so one task's status never bleeds into another. Headers
// with no status marker in the window are dropped.
func scan(text string, lookahead int) []Task {
	if lookahead <= 0 {
		lookahead = DefaultStatusLookahead
	}

	lines := strings.Split(text, "\n")
	var tasks []Task
	for i, line := range lines {
		number, title, ok := matchHeader(line)
		if !ok {
			continue
		}

		status, found := findStatus(lines, i+1, lookahead)
		if !found {
			continue
		}

		tasks = append(tasks, Task{Number: number, Title: title, Status: status})
	}
	return tasks
}

// matchHeader tries the three accepted header shapes in order.
func matchHeader(line string) (number int, title string, ok bool) {
	for _, re := range []*regexp.Regexp{phaseHeaderRe, numberedHeaderRe, glyphHeaderRe} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n, strings.TrimSpace(m[2]), true
	}
	return 0, "", false
}

// findStatus searches lines[start:start+window] for a status marker.
func findStatus(lines []string, start, window int) (Status, bool) {
	for i := start; i < len(lines) && i < start+window; i++ {
		line := lines[i]
		if _, _, isHeader := matchHeader(line); isHeader {
			return "", false
		}
		if st, ok := matchStatus(line); ok {
			return st, true
		}
	}
	return "", false
}

// matchStatus resolves a single line to a status. Glyphs take precedence;
// when several glyphs appear on one line the leftmost wins.
func matchStatus(line string) (Status, bool) {
	best := -1
	var bestStatus Status
	for _, g := range statusGlyphs {
		if idx := strings.Index(line, g.glyph); idx >= 0 && (best == -1 || idx < best) {
			best = idx
			bestStatus = g.status
		}
	}
	if best >= 0 {
		return bestStatus, true
	}

	lower := strings.ToLower(line)
	for _, k := range statusKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.status, true
		}
	}
	return "", false
}
