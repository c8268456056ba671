package audit

import (
	"sync"
	"time"

	"github.com/seo-optimizer/seoaudit/page"
)

// Engine runs a rule set against pages. The zero value is not usable; use
// NewEngine.
type Engine struct {
	rules   []Rule
	workers int
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers evaluates rules across n goroutines. Results keep catalog order
// whatever the evaluation order.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithClock overrides the clock used to stamp reports.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRules replaces the catalog. The rule set is validated like the
// built-in catalog and an invalid one panics.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		if err := validateCatalog(rules); err != nil {
			panic("audit: invalid rule set: " + err.Error())
		}
		e.rules = rules
	}
}

// NewEngine returns an engine over the built-in catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rules: Catalog, workers: 1, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Run audits p with the built-in catalog. vitals may be nil.
func Run(p page.Extraction, vitals *page.WebVitals) Report {
	return defaultEngine.Run(p, vitals)
}

// Rules returns the engine's rule set in catalog order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Run evaluates every rule against p, replaces performance placeholders with
// measured vitals when given, and scores the outcome. Rules are total by
// contract; a panicking rule is a bug and is not recovered.
func (e *Engine) Run(p page.Extraction, vitals *page.WebVitals) Report {
	results := e.evaluate(p)

	if vitals != nil {
		e.applyOverrides(results, vitalsOverrides(*vitals))
	}

	scores, overall := Score(results)
	return Report{
		Score:          overall,
		Results:        results,
		CategoryScores: scores,
		Timestamp:      e.now().UTC().Format(page.TimestampFormat),
		URL:            p.URL,
	}
}

func (e *Engine) evaluate(p page.Extraction) []Result {
	results := make([]Result, len(e.rules))
	if e.workers <= 1 {
		for i, r := range e.rules {
			results[i] = r.Evaluate(p)
		}
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.workers)
	for i, r := range e.rules {
		wg.Add(1)
		go func(i int, r Rule) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			results[i] = r.Evaluate(p)
		}(i, r)
	}
	wg.Wait()
	return results
}

// applyOverrides replaces results in place by rule ID. An override whose ID is
// not among the results is ignored; catalog validation guarantees the
// placeholders exist.
func (e *Engine) applyOverrides(results []Result, overrides map[string]Verdict) {
	if len(overrides) == 0 {
		return
	}
	for i, r := range results {
		if v, ok := overrides[r.RuleID]; ok {
			results[i] = e.rules[i].result(v)
		}
	}
}
