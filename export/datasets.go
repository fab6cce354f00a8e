package export

import (
	"sort"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/entities"
)

// datasets maps a dataset name to the rows it exports from a snapshot
var datasets = map[string]func(s entities.Snapshot) any{
	"patients":      func(s entities.Snapshot) any { return s.Patients },
	"treatments":    func(s entities.Snapshot) any { return s.Treatments },
	"factors":       func(s entities.Snapshot) any { return s.Factors },
	"distributions": func(s entities.Snapshot) any { return s.Distributions },
	"states":        func(s entities.Snapshot) any { return aggregate.StateStats(s.Patients, s.Treatments) },
	"companies":     func(s entities.Snapshot) any { return aggregate.CompanyStats(s.Factors) },
}

// Datasets returns the exportable dataset names, sorted
func Datasets() []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dataset builds the table of one named dataset. ok is false for unknown
// names.
func Dataset(name string, s entities.Snapshot) (t Table, ok bool, err error) {
	rows, ok := datasets[name]
	if !ok {
		return Table{}, false, nil
	}
	t, err = FromSlice(rows(s))
	return t, true, err
}
