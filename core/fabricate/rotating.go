package fabricate

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// Kind selects what a rotating event writes.
type Kind int

// Rotation order of the batch fabricator.
const (
	ProgressLog Kind = iota
	Documentation
	Configuration
)

func (k Kind) String() string {
	switch k {
	case ProgressLog:
		return "progress-log"
	case Documentation:
		return "documentation"
	case Configuration:
		return "configuration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindFor returns the kind used for the event at index.
func KindFor(index int) Kind {
	if index < 0 {
		index = -index
	}
	return Kind(index % 3)
}

var (
	progressLogPath = "daily-progress.md"
	docPaths        = []string{"API.md", "CONTRIBUTING.md", "CHANGELOG.md"}
	settingsPath    = "config/settings.yaml"
)

// Rotating is the batch fabricator. Every event appends a dated entry, so
// each produces a change git can commit.
type Rotating struct {
	root string
	rng  *rand.Rand
}

var _ contract.Fabricator = &Rotating{} // Compile-time check

// NewRotating creates a rotating fabricator for the repository at root.
func NewRotating(root string, rng *rand.Rand) *Rotating {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Rotating{root: root, rng: rng}
}

// Produce implements contract.Fabricator.
func (r *Rotating) Produce(ts time.Time, index int) ([]schema.FileMutation, error) {
	return []schema.FileMutation{r.render(KindFor(index), ts, index)}, nil
}

func (r *Rotating) render(kind Kind, ts time.Time, index int) schema.FileMutation {
	stamp := ts.Format(time.RFC3339)
	switch kind {
	case Documentation:
		path := docPaths[r.rng.IntN(len(docPaths))]
		body := fmt.Sprintf("\n## Update %s\n\nRevision %d.\n", stamp, index+1)
		return schema.FileMutation{Path: path, Content: withHeader(r.root, path, "# "+docTitle(path)+"\n", body), Append: true}
	case Configuration:
		body := fmt.Sprintf("update_%d: %q\n", index+1, stamp)
		return schema.FileMutation{Path: settingsPath, Content: withHeader(r.root, settingsPath, "# Project settings\n", body), Append: true}
	default:
		body := fmt.Sprintf("\n## %s\n- Entry %d recorded at %s\n", ts.Format(time.DateOnly), index+1, stamp)
		return schema.FileMutation{Path: progressLogPath, Content: withHeader(r.root, progressLogPath, progressLogHeader, body), Append: true}
	}
}

func docTitle(path string) string {
	switch path {
	case "API.md":
		return "API Documentation"
	case "CONTRIBUTING.md":
		return "Contributing"
	default:
		return "Changelog"
	}
}
