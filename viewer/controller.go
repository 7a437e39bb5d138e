package viewer

import (
	"fmt"
	"slices"
	"sync"

	"purchase-explorer/models"
	"purchase-explorer/services"
	"purchase-explorer/utils"
)

// RenderKind says how much of the page an event invalidated.
type RenderKind string

const (
	// RenderFull: the age subset was recomputed and both panels redrawn.
	RenderFull RenderKind = "full"
	// RenderHistogram: selection changed; bar styles and histogram redrawn.
	RenderHistogram RenderKind = "histogram"
	// RenderStyle: hover only; no data was recomputed.
	RenderStyle RenderKind = "style"
	// RenderEmpty: the age subset is empty and a placeholder replaces the charts.
	RenderEmpty RenderKind = "empty"
)

// View is an immutable snapshot of everything the renderer needs.
type View struct {
	Region        string                `json:"region"`
	Bound         int                   `json:"bound"`
	Bounds        Bounds                `json:"bounds"`
	BoundLabel    string                `json:"boundLabel"`
	Selection     models.Selection      `json:"-"`
	SelectionName string                `json:"selection"`
	Hover         Hover                 `json:"hover"`
	Rows          []models.AggregateRow `json:"rows"`
	Bins          []models.HistogramBin `json:"bins"`
	SubsetSize    int                   `json:"subsetSize"`
	HistogramSize int                   `json:"histogramSize"`
	Empty         bool                  `json:"empty"`
	Message       string                `json:"message,omitempty"`
	Kind          RenderKind            `json:"kind"`
}

// Controller owns the dataset and the current state. Every method holds the
// same lock, so events from concurrent requests are applied one at a time.
type Controller struct {
	mu      sync.Mutex
	logger  *utils.Logger
	region  string
	dataset []models.Purchase
	bounds  Bounds

	state  State
	subset []models.Purchase
	rows   []models.AggregateRow
	bins   []models.HistogramBin
	shown  int
}

// New builds a Controller over a cleaned, region-filtered dataset and runs
// the initial filter at the maximum age.
func New(region string, dataset []models.Purchase, logger *utils.Logger) (*Controller, error) {
	lo, hi, err := services.AgeRange(dataset)
	if err != nil {
		return nil, fmt.Errorf("viewer: %s: %w", region, err)
	}

	c := &Controller{
		logger:  logger,
		region:  region,
		dataset: dataset,
		bounds:  Bounds{Min: lo, Max: hi},
	}
	c.state = Initial(c.bounds)
	c.refilter()
	c.recomputeHistogram()

	logger.Info("[viewer] %s: %d records, ages %d-%d", region, len(dataset), lo, hi)
	return c, nil
}

// Bounds returns the slider range.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Region returns the region the dataset was filtered to.
func (c *Controller) Region() string { return c.region }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the current snapshot without changing anything.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(RenderFull)
}

// SetAgeBound moves the slider to v, clamped to the dataset's age range.
func (c *Controller) SetAgeBound(v int) View {
	return c.Dispatch(AgeBoundChanged{Value: v})
}

// Dispatch applies ev and returns the view to render.
// Age changes refilter and re-aggregate; selection changes recompute only
// the histogram from the cached subset; hovers recompute nothing.
func (c *Controller) Dispatch(ev Event) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.state = Reduce(prev, c.bounds, ev)

	kind := RenderStyle
	switch ev.(type) {
	case AgeBoundChanged, Reset:
		c.refilter()
		c.recomputeHistogram()
		kind = RenderFull
	default:
		if c.state.Selection != prev.Selection {
			c.recomputeHistogram()
			kind = RenderHistogram
		}
	}

	c.logger.Debug("[viewer] %s: bound=%d selection=%s kind=%s",
		ev.Type(), c.state.Bound, c.state.Selection, kind)
	return c.snapshot(kind)
}

func (c *Controller) refilter() {
	c.subset = services.FilterByMaxAge(c.dataset, c.state.Bound)
	if len(c.subset) == 0 {
		c.rows = nil
		return
	}
	c.rows = services.AggregateByCategory(c.subset)
}

// recomputeHistogram bins the cached subset, narrowed to the selected
// category when there is one.
func (c *Controller) recomputeHistogram() {
	if len(c.subset) == 0 {
		c.bins = nil
		c.shown = 0
		return
	}
	toShow := c.subset
	if c.state.Selection.Active {
		toShow = services.FilterByCategory(c.subset, c.state.Selection.Category)
	}
	c.bins = services.Histogram(toShow, services.DefaultDomain, services.DefaultBinCount)
	c.shown = len(toShow)
}

func (c *Controller) snapshot(kind RenderKind) View {
	v := View{
		Region:        c.region,
		Bound:         c.state.Bound,
		Bounds:        c.bounds,
		BoundLabel:    BoundLabel(c.bounds, c.state.Bound),
		Selection:     c.state.Selection,
		SelectionName: c.state.Selection.String(),
		Hover:         c.state.Hover,
		SubsetSize:    len(c.subset),
		Kind:          kind,
	}
	if len(c.subset) == 0 {
		v.Empty = true
		v.Kind = RenderEmpty
		v.Message = fmt.Sprintf("No data for %s for ages up to %d.", c.region, c.state.Bound)
		return v
	}
	v.Rows = slices.Clone(c.rows)
	v.Bins = slices.Clone(c.bins)
	v.HistogramSize = c.shown
	return v
}
