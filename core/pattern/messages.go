package pattern

// categories is ordered so seeded runs stay reproducible.
var categories = []string{"feat", "fix", "docs", "refactor", "test", "chore", "perf", "style"}

var phrasePool = map[string][]string{
	"feat": {
		"add new utility functions",
		"add input validation helpers",
		"support configurable output formats",
		"introduce caching layer for lookups",
		"add pagination to list endpoints",
	},
	"fix": {
		"resolve minor bugs and issues",
		"handle empty input gracefully",
		"correct off-by-one in date range",
		"fix race condition in async operations",
		"correct error handling in API calls",
	},
	"docs": {
		"update documentation",
		"clarify setup instructions",
		"add usage examples",
		"document configuration options",
		"refresh changelog",
	},
	"refactor": {
		"improve code structure and readability",
		"extract helper functions",
		"centralize configuration",
		"simplify error handling",
		"split large module into smaller units",
	},
	"test": {
		"add unit tests",
		"cover edge cases in parser",
		"add regression test for date handling",
		"improve test fixtures",
	},
	"chore": {
		"update dependencies",
		"tidy project files",
		"update build configuration",
		"improve continuous integration",
	},
	"perf": {
		"optimize performance",
		"reduce allocations in hot path",
		"speed up file scanning",
		"cache repeated computations",
	},
	"style": {
		"improve code formatting",
		"normalize naming conventions",
		"fix lint warnings",
	},
}
