package markup

import "github.com/goliatone/go-docmark/pkg/interfaces"

// Diagnostics collects the diagnostics reported during one compilation.
type Diagnostics struct {
	items []interfaces.Diagnostic
}

// Report appends d.
func (d *Diagnostics) Report(diag interfaces.Diagnostic) {
	d.items = append(d.items, diag)
}

// Extend appends every diagnostic in list.
func (d *Diagnostics) Extend(list []interfaces.Diagnostic) {
	d.items = append(d.items, list...)
}

// Len returns the number of collected diagnostics.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

// List returns a copy of the collected diagnostics, nil when empty.
func (d *Diagnostics) List() []interfaces.Diagnostic {
	if d.Len() == 0 {
		return nil
	}
	return append([]interfaces.Diagnostic(nil), d.items...)
}

// HasErrors reports whether any error severity diagnostic was collected.
func (d *Diagnostics) HasErrors() bool {
	if d == nil {
		return false
	}
	for _, item := range d.items {
		if item.Severity >= interfaces.SeverityError {
			return true
		}
	}
	return false
}
