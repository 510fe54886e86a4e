package entry

// Levels a generated entry may carry. Empty means unset.
var AllowedLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// Entry is one lexical record: a headword in the studied language plus the
// generated metadata that backs its flashcard.
type Entry struct {
	// ID is the local database row id (0 until saved).
	ID int64

	// Term is the headword in normalized form (lowercased, trimmed,
	// collapsed spaces). It is the natural de-duplication key.
	Term string

	// Translation is the short gloss in the learner's language.
	Translation string

	// DefinitionTarget is the definition written in the studied language.
	DefinitionTarget string

	// DefinitionNative is the definition written in the learner's language.
	DefinitionNative string

	Pronunciation string
	Grammar       string

	// Collocations and Synonyms are free-form phrases, one per element.
	Collocations []string
	Synonyms     []string

	// ExamplesTarget and ExamplesNative are aligned by position. Lists of
	// unequal length are stored as-is and truncated to the shorter side
	// when paired for rendering.
	ExamplesTarget []string
	ExamplesNative []string

	Etymology string
	Related   []string

	// Level is a proficiency grade from AllowedLevels, or empty.
	Level string

	// Tags are free-form labels; by convention at least a part of speech.
	Tags []string

	// Score is a learning priority in [1,10]; 0 means unset.
	Score int

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// SyncRecord links a local entry to its remote flashcard note. At most one
// exists per entry; deleting the entry cascades to it.
type SyncRecord struct {
	ID      int64
	EntryID int64

	// NoteID is the opaque note handle issued by the flashcard app.
	// 0 means no remote note is known.
	NoteID int64

	// Deck is the remote collection the note lives in.
	Deck string

	// SyncedAt is nil until the first successful push.
	SyncedAt      *int64
	LastUpdatedAt *int64

	// SyncCount increments on every successful push.
	SyncCount int

	// Review telemetry snapshot pulled from the flashcard app. Read-only
	// here; refreshed on reconcile, never written back.
	Reviews    *int64
	Lapses     *int64
	EaseFactor *int64
	Interval   *int64
	Due        *int64
}

// ReviewStats is the scheduling telemetry snapshot pulled from the
// flashcard app during reconcile.
type ReviewStats struct {
	Reviews    int64
	Lapses     int64
	EaseFactor int64
	Interval   int64
	Due        int64
}

// ExamplePair is one aligned example sentence.
type ExamplePair struct {
	Target string
	Native string
}

// ExamplePairs zips the two example lists, truncating to the shorter one.
func (e *Entry) ExamplePairs() []ExamplePair {
	n := len(e.ExamplesTarget)
	if len(e.ExamplesNative) < n {
		n = len(e.ExamplesNative)
	}
	pairs := make([]ExamplePair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, ExamplePair{
			Target: e.ExamplesTarget[i],
			Native: e.ExamplesNative[i],
		})
	}
	return pairs
}

// ValidLevel reports whether level is one of AllowedLevels or empty.
func ValidLevel(level string) bool {
	if level == "" {
		return true
	}
	for _, l := range AllowedLevels {
		if level == l {
			return true
		}
	}
	return false
}

// ClampScore forces score into [1,10], keeping 0 as "unset".
func ClampScore(score int) int {
	if score <= 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
