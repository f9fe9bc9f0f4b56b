package intel

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/types"
	"github.com/veridano/threat-sentinel/pkg/veridano"
)

// Searcher is the one capability the coordinator needs from the
// intelligence platform. *veridano.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, req veridano.SearchRequest) ([]types.Finding, error)
}

// TaggedFinding is a raw finding annotated with the category whose
// query produced it.
type TaggedFinding struct {
	Finding  types.Finding
	Category types.Category
}

// Coordinator issues every category's query each cycle and joins the
// results. Category queries are independent: one category's failure is
// collected as a partial failure and never blocks the others.
type Coordinator struct {
	searcher Searcher
	specs    []CategorySpec
	log      *logrus.Logger
}

// NewCoordinator creates a coordinator over the given category specs.
func NewCoordinator(searcher Searcher, specs []CategorySpec, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		searcher: searcher,
		specs:    specs,
		log:      log,
	}
}

// Specs returns the active category registry.
func (c *Coordinator) Specs() []CategorySpec {
	return c.specs
}

// SetSpecs replaces the category registry. Called between cycles when
// config hot-reload changes source allow-lists; the coordinator is not
// safe for concurrent use with an in-flight Collect.
func (c *Coordinator) SetSpecs(specs []CategorySpec) {
	c.specs = specs
}

// Collect runs all category queries concurrently and returns the joined
// findings in registry order, plus the per-category failures. Both may
// be non-empty at once.
func (c *Coordinator) Collect(ctx context.Context) ([]TaggedFinding, []types.CategoryFailure) {
	type slot struct {
		findings []types.Finding
		err      error
	}
	slots := make([]slot, len(c.specs))

	var wg sync.WaitGroup
	for i, spec := range c.specs {
		wg.Add(1)
		go func(i int, spec CategorySpec) {
			defer wg.Done()
			findings, err := c.searcher.Search(ctx, veridano.SearchRequest{
				Query:    spec.Query,
				TopK:     spec.TopK,
				MinScore: spec.MinScore,
				Sources:  spec.Sources,
			})
			slots[i] = slot{findings: findings, err: err}
		}(i, spec)
	}
	wg.Wait()

	var (
		tagged   []TaggedFinding
		failures []types.CategoryFailure
	)
	for i, spec := range c.specs {
		if slots[i].err != nil {
			c.log.WithFields(logrus.Fields{
				"category": spec.Category,
			}).WithError(slots[i].err).Warn("Category query failed, continuing without it")
			failures = append(failures, types.CategoryFailure{
				Category: spec.Category,
				Err:      slots[i].err,
			})
			continue
		}
		for _, f := range slots[i].findings {
			tagged = append(tagged, TaggedFinding{Finding: f, Category: spec.Category})
		}
	}
	return tagged, failures
}
