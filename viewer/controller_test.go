package viewer

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"purchase-explorer/models"
	"purchase-explorer/services"
	"purchase-explorer/utils"
)

func scenarioDataset() []models.Purchase {
	return []models.Purchase{
		{Region: "Massachusetts", Category: "Male", Age: 20, Amount: 50},
		{Region: "Massachusetts", Category: "Female", Age: 25, Amount: 30},
		{Region: "Massachusetts", Category: "Male", Age: 40, Amount: 20},
	}
}

func newController(t *testing.T, data []models.Purchase) *Controller {
	t.Helper()
	c, err := New("Massachusetts", data, utils.NewNopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func binTotal(bins []models.HistogramBin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}

func TestNewStartsAtMaxAge(t *testing.T) {
	c := newController(t, scenarioDataset())
	v := c.View()

	if c.Bounds() != (Bounds{Min: 20, Max: 40}) {
		t.Errorf("Bounds: got %+v", c.Bounds())
	}
	if v.Bound != 40 || v.BoundLabel != "Ages: All" {
		t.Errorf("initial bound: got %d %q", v.Bound, v.BoundLabel)
	}
	if v.SubsetSize != 3 || len(v.Rows) != 2 {
		t.Errorf("initial view: subset %d rows %d", v.SubsetSize, len(v.Rows))
	}
	if v.Selection.Active {
		t.Errorf("initial selection: got %v, want none", v.Selection)
	}
}

func TestNewRejectsEmptyDataset(t *testing.T) {
	_, err := New("Massachusetts", nil, utils.NewNopLogger())
	if !errors.Is(err, services.ErrEmptyDataset) {
		t.Errorf("New(nil): got %v, want ErrEmptyDataset", err)
	}
}

func TestSetAgeBoundScenario(t *testing.T) {
	c := newController(t, scenarioDataset())
	v := c.SetAgeBound(30)

	want := []models.AggregateRow{
		{Category: "Male", TotalAmount: 50, Count: 1},
		{Category: "Female", TotalAmount: 30, Count: 1},
	}
	if !reflect.DeepEqual(v.Rows, want) {
		t.Errorf("Rows: got %+v, want %+v", v.Rows, want)
	}
	if v.SubsetSize != 2 || v.Kind != RenderFull {
		t.Errorf("view: subset %d kind %s", v.SubsetSize, v.Kind)
	}
	if v.BoundLabel != "Ages: 20-30" {
		t.Errorf("BoundLabel: got %q", v.BoundLabel)
	}
}

func TestSetAgeBoundIsIdempotent(t *testing.T) {
	c := newController(t, scenarioDataset())
	a := c.SetAgeBound(30)
	b := c.SetAgeBound(30)

	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Errorf("Rows differ: %+v vs %+v", a.Rows, b.Rows)
	}
	if !reflect.DeepEqual(a.Bins, b.Bins) {
		t.Errorf("Bins differ")
	}
}

func TestSetAgeBoundClampsBelowMin(t *testing.T) {
	c := newController(t, scenarioDataset())
	v := c.SetAgeBound(5)

	if v.Bound != 20 {
		t.Errorf("Bound: got %d, want clamped 20", v.Bound)
	}
	if v.Empty || v.SubsetSize != 1 {
		t.Errorf("clamped to min should keep the youngest record: %+v", v)
	}

	v = c.SetAgeBound(500)
	if v.Bound != 40 {
		t.Errorf("Bound: got %d, want clamped 40", v.Bound)
	}
}

func TestEmptySubsetShowsPlaceholder(t *testing.T) {
	// Exercised without clamping by filtering below every age directly.
	c := newController(t, scenarioDataset())
	c.mu.Lock()
	c.state.Bound = 10
	c.refilter()
	c.recomputeHistogram()
	v := c.snapshot(RenderFull)
	c.mu.Unlock()

	if !v.Empty || v.Kind != RenderEmpty {
		t.Fatalf("expected empty view, got %+v", v)
	}
	if v.Message != "No data for Massachusetts for ages up to 10." {
		t.Errorf("Message: got %q", v.Message)
	}
	if v.Rows != nil || v.Bins != nil {
		t.Errorf("empty view should carry no chart data")
	}
}

func TestCategoryClickScenario(t *testing.T) {
	c := newController(t, scenarioDataset())
	before := c.View()

	v := c.Dispatch(CategoryClicked{Category: "Male"})
	if !v.Selection.Is("Male") {
		t.Fatalf("Selection: got %v, want Male", v.Selection)
	}
	if v.Kind != RenderHistogram {
		t.Errorf("Kind: got %s, want %s", v.Kind, RenderHistogram)
	}
	if v.HistogramSize != 2 || binTotal(v.Bins) != 2 {
		t.Errorf("histogram should cover the two Male records, got size %d total %d",
			v.HistogramSize, binTotal(v.Bins))
	}
	if !reflect.DeepEqual(v.Rows, before.Rows) {
		t.Errorf("bar chart aggregation changed on selection")
	}

	v = c.Dispatch(CategoryClicked{Category: "Male"})
	if v.Selection.Active {
		t.Errorf("Selection: got %v, want none", v.Selection)
	}
	if !reflect.DeepEqual(v.Bins, before.Bins) {
		t.Errorf("double toggle did not restore the histogram")
	}
	if binTotal(v.Bins) != 3 {
		t.Errorf("histogram total: got %d, want 3", binTotal(v.Bins))
	}
}

func TestSelectionUsesCurrentSubset(t *testing.T) {
	c := newController(t, scenarioDataset())
	c.SetAgeBound(30)
	v := c.Dispatch(CategoryClicked{Category: "Male"})

	if binTotal(v.Bins) != 1 {
		t.Errorf("Male records at or under 30: got %d, want 1", binTotal(v.Bins))
	}

	// Selection persists when the bound moves again.
	v = c.SetAgeBound(40)
	if !v.Selection.Is("Male") || binTotal(v.Bins) != 2 {
		t.Errorf("after widening: selection %v, total %d", v.Selection, binTotal(v.Bins))
	}
}

func TestSelectionOfAbsentCategory(t *testing.T) {
	c := newController(t, scenarioDataset())
	c.Dispatch(CategoryClicked{Category: "Female"})
	v := c.SetAgeBound(20)

	if v.Empty {
		t.Fatal("subset with one Male record should not be empty")
	}
	if !v.Selection.Is("Female") || binTotal(v.Bins) != 0 || len(v.Bins) != services.DefaultBinCount {
		t.Errorf("expected %d zero bins for Female, got %+v", services.DefaultBinCount, v.Bins)
	}
}

func TestHoverDoesNotRecompute(t *testing.T) {
	c := newController(t, scenarioDataset())
	v := c.Dispatch(CategoryHovered{Category: "Female"})

	if v.Kind != RenderStyle {
		t.Errorf("Kind: got %s, want %s", v.Kind, RenderStyle)
	}
	if !v.Hover.OnCategory("Female") {
		t.Errorf("Hover: got %+v", v.Hover)
	}
}

func TestResetRestoresInitialView(t *testing.T) {
	c := newController(t, scenarioDataset())
	initial := c.View()

	c.SetAgeBound(25)
	c.Dispatch(CategoryClicked{Category: "Female"})
	v := c.Dispatch(Reset{})

	if v.Bound != initial.Bound || v.Selection != initial.Selection {
		t.Errorf("Reset: got bound %d selection %v", v.Bound, v.Selection)
	}
	if !reflect.DeepEqual(v.Rows, initial.Rows) || !reflect.DeepEqual(v.Bins, initial.Bins) {
		t.Errorf("Reset did not restore the panels")
	}
}

func TestViewIsDetachedFromController(t *testing.T) {
	c := newController(t, scenarioDataset())
	v := c.View()
	v.Rows[0].TotalAmount = -1

	if c.View().Rows[0].TotalAmount == -1 {
		t.Error("mutating a View leaked into the controller")
	}
}

func TestDispatchIsSerialised(t *testing.T) {
	c := newController(t, scenarioDataset())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.SetAgeBound(20 + i%21)
			c.Dispatch(CategoryHovered{Category: "Male"})
		}(i)
	}
	wg.Wait()

	c.SetAgeBound(40)
	if got := binTotal(c.View().Bins); got != 3 {
		t.Errorf("histogram total after concurrent events: got %d, want 3", got)
	}
}
