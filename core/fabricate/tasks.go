package fabricate

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

const (
	progressLogHeader = "# Daily Progress Log\n"
	todosPath         = "todos.md"
	todosHeader       = "# Project TODOs\n"

	// DefaultFeatureName is used by the feature set when no name is given.
	DefaultFeatureName = "new-feature"
)

// Task names.
const (
	TaskDaily    = "daily"
	TaskMicro    = "micro"
	TaskDocs     = "docs"
	TaskTests    = "tests"
	TaskRefactor = "refactor"
	TaskBugfix   = "bugfix"
	TaskFeature  = "feature"
)

// TaskNames lists every built-in task set.
var TaskNames = []string{TaskDaily, TaskMicro, TaskDocs, TaskTests, TaskRefactor, TaskBugfix, TaskFeature}

var featureNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Task is one file change with the commit message that goes with it.
type Task struct {
	Path    string
	Message string
	Header  string // written before the first appended entry
	Append  bool
	Render  func(ts time.Time) string
}

// TaskSet is a fixed, ordered list of tasks. Produce(ts, i) returns task i.
type TaskSet struct {
	Name  string
	root  string
	tasks []Task
}

var _ contract.Fabricator = &TaskSet{} // Compile-time check

// Len returns the number of tasks.
func (s *TaskSet) Len() int { return len(s.tasks) }

// Tasks returns a copy of the task list.
func (s *TaskSet) Tasks() []Task { return slices.Clone(s.tasks) }

// Produce implements contract.Fabricator.
func (s *TaskSet) Produce(ts time.Time, index int) ([]schema.FileMutation, error) {
	if index < 0 || index >= len(s.tasks) {
		return nil, fmt.Errorf("task %d out of range for %s set of %d", index, s.Name, len(s.tasks))
	}
	t := s.tasks[index]
	content := t.Render(ts)
	if t.Append {
		content = withHeader(s.root, t.Path, t.Header, content)
	}
	return []schema.FileMutation{{Path: t.Path, Content: content, Append: t.Append}}, nil
}

// Events returns one event per task, one second apart starting at now.
func (s *TaskSet) Events(now time.Time) []schema.ActivityEvent {
	events := make([]schema.ActivityEvent, len(s.tasks))
	for i, t := range s.tasks {
		events[i] = schema.ActivityEvent{Timestamp: now.Add(time.Duration(i) * time.Second), Message: t.Message}
	}
	return events
}

// NewTaskSet builds the named set for the repository at root. featureName is
// only read by the feature set. rng picks the daily activity.
func NewTaskSet(name, root, featureName string, rng *rand.Rand) (*TaskSet, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	var tasks []Task
	switch name {
	case TaskDaily:
		tasks = dailyTasks(rng)
	case TaskMicro:
		tasks = microTasks()
	case TaskDocs:
		tasks = docsTasks()
	case TaskTests:
		tasks = testsTasks()
	case TaskRefactor:
		tasks = refactorTasks()
	case TaskBugfix:
		tasks = bugfixTasks()
	case TaskFeature:
		if featureName == "" {
			featureName = DefaultFeatureName
		}
		if !featureNamePattern.MatchString(featureName) {
			return nil, fmt.Errorf("%w: feature name %q must be letters, digits, '-' or '_'", contract.ErrInvalidConfiguration, featureName)
		}
		tasks = featureTasks(featureName)
	default:
		return nil, fmt.Errorf("%w: unknown task set %q", contract.ErrInvalidConfiguration, name)
	}
	return &TaskSet{Name: name, root: root, tasks: tasks}, nil
}

var dailyActivities = []string{
	"Code refactoring",
	"Documentation updates",
	"Bug fixes",
	"Performance improvements",
	"Code cleanup",
	"Feature enhancements",
	"Test improvements",
	"Configuration updates",
}

func dailyTasks(rng *rand.Rand) []Task {
	activity := dailyActivities[rng.IntN(len(dailyActivities))]
	return []Task{
		{
			Path:    progressLogPath,
			Message: "docs: update daily progress log",
			Header:  progressLogHeader,
			Append:  true,
			Render: func(ts time.Time) string {
				return fmt.Sprintf("\n## %s\n- Project maintenance and improvements\n- Code quality enhancements\n- Logged at %s\n",
					ts.Format(time.DateOnly), ts.Format(time.RFC3339))
			},
		},
		{
			Path:    todosPath,
			Message: "chore: add task: " + activity,
			Header:  todosHeader,
			Append:  true,
			Render: func(ts time.Time) string {
				return fmt.Sprintf("\n- [ ] %s - %s\n", activity, ts.Format(time.RFC3339))
			},
		},
	}
}

func stampedModule(purpose string) func(time.Time) string {
	return func(ts time.Time) string {
		return fmt.Sprintf("// %s\n// Updated: %s\n\nmodule.exports = {\n    created: '%s'\n};\n",
			purpose, ts.Format(time.RFC3339), ts.Format(time.RFC3339))
	}
}

func microTasks() []Task {
	return []Task{
		{Path: "utils.js", Message: "feat: add utility functions", Render: stampedModule("Utility functions")},
		{Path: "config.js", Message: "chore: update configuration", Render: stampedModule("Configuration")},
		{Path: "helpers.js", Message: "feat: add helper methods", Render: stampedModule("Helper methods")},
		{Path: "constants.js", Message: "chore: define project constants", Render: stampedModule("Project constants")},
	}
}

func dated(title string) func(time.Time) string {
	return func(ts time.Time) string {
		return fmt.Sprintf("\n## %s (%s)\n\n- Revised on %s\n", title, ts.Format(time.DateOnly), ts.Format(time.RFC3339))
	}
}

func docsTasks() []Task {
	return []Task{
		{Path: "API.md", Message: "docs: add API documentation", Header: "# API Documentation\n", Append: true, Render: dated("Endpoints")},
		{Path: "CONTRIBUTING.md", Message: "docs: add contributing guidelines", Header: "# Contributing\n", Append: true, Render: dated("Guidelines")},
		{Path: "CHANGELOG.md", Message: "docs: update changelog", Header: "# Changelog\n", Append: true, Render: dated("Unreleased")},
		{Path: "docs/setup.md", Message: "docs: add setup documentation", Header: "# Setup\n", Append: true, Render: dated("Installation")},
	}
}

func testsTasks() []Task {
	return []Task{
		{Path: "test.js", Message: "test: add unit tests", Render: func(ts time.Time) string {
			return fmt.Sprintf("// Unit tests, updated %s\nconst assert = require('assert');\n\nassert.ok(true);\n", ts.Format(time.RFC3339))
		}},
		{Path: ".eslintrc.json", Message: "chore: add ESLint configuration", Render: func(ts time.Time) string {
			return fmt.Sprintf("{\n  \"root\": true,\n  \"extends\": \"eslint:recommended\",\n  \"settings\": {\"updated\": %q}\n}\n", ts.Format(time.RFC3339))
		}},
		{Path: ".gitignore", Message: "chore: update gitignore", Render: func(ts time.Time) string {
			return fmt.Sprintf("# updated %s\nnode_modules/\n*.log\n.env\n", ts.Format(time.RFC3339))
		}},
		{Path: "package-lock.json", Message: "chore: update dependencies", Render: func(ts time.Time) string {
			return fmt.Sprintf("{\n  \"lockfileVersion\": 3,\n  \"updated\": %q\n}\n", ts.Format(time.RFC3339))
		}},
	}
}

func refactorTasks() []Task {
	return []Task{
		{Path: "src/utils/helpers.js", Message: "refactor: extract helper functions", Render: stampedModule("Extract helper functions")},
		{Path: "src/config/settings.js", Message: "refactor: centralize configuration", Render: stampedModule("Centralize configuration")},
		{Path: "src/validators/input.js", Message: "refactor: add input validation", Render: stampedModule("Add input validation")},
		{Path: "src/formatters/output.js", Message: "refactor: improve output formatting", Render: stampedModule("Improve output formatting")},
	}
}

var bugFixes = []string{
	"fix memory leak in event handlers",
	"resolve race condition in async operations",
	"fix validation edge case",
	"correct error handling in API calls",
}

func bugfixTasks() []Task {
	tasks := make([]Task, len(bugFixes))
	for i, fix := range bugFixes {
		tasks[i] = Task{
			Path:    fmt.Sprintf("fixes/bug-fix-%d.md", i+1),
			Message: "fix: " + fix,
			Header:  "# Bug Fix Notes\n",
			Append:  true,
			Render:  dated(fix),
		}
	}
	return tasks
}

func featureTasks(name string) []Task {
	return []Task{
		{Path: "src/" + name + ".js", Message: fmt.Sprintf("feat: implement %s feature", name), Render: stampedModule(name + " feature implementation")},
		{Path: "src/" + name + ".test.js", Message: fmt.Sprintf("test: add tests for %s", name), Render: stampedModule("Tests for " + name)},
		{Path: "docs/" + name + ".md", Message: fmt.Sprintf("docs: document %s feature", name), Header: "# " + name + "\n", Append: true, Render: dated("Usage")},
	}
}
