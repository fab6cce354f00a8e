package aggregate

import (
	"sort"

	"github.com/hemocore/console/entities"
)

// IsDelivered is the single status classifier for distributions: a record
// counts as delivered when its status says so or when either date is set.
func IsDelivered(d entities.MedicineDistribution) bool {
	return d.Status == entities.StatusDelivered || d.DeliveryDate != "" || d.DistributionDate != ""
}

// DistributionStatusOf returns Delivered or Pending
func DistributionStatusOf(d entities.MedicineDistribution) string {
	if IsDelivered(d) {
		return entities.StatusDelivered
	}
	return entities.StatusPending
}

// PendingDistributions keeps the distributions not yet delivered
func PendingDistributions(ds []entities.MedicineDistribution) []entities.MedicineDistribution {
	out := make([]entities.MedicineDistribution, 0)
	for _, d := range ds {
		if !IsDelivered(d) {
			out = append(out, d)
		}
	}
	return out
}

// DeliveredDistributions keeps the delivered distributions
func DeliveredDistributions(ds []entities.MedicineDistribution) []entities.MedicineDistribution {
	out := make([]entities.MedicineDistribution, 0)
	for _, d := range ds {
		if IsDelivered(d) {
			out = append(out, d)
		}
	}
	return out
}

// StateDistribution summarizes the distributions sent to one state
type StateDistribution struct {
	State               string  `json:"state"`
	Count               int     `json:"count"`
	Pending             int     `json:"pending"`
	Delivered           int     `json:"delivered"`
	Quantity            float64 `json:"quantity"`
	QuantityDistributed float64 `json:"quantityDistributed"`
}

// DistributionsByState groups distributions by destination state, busiest
// state first
func DistributionsByState(ds []entities.MedicineDistribution) []StateDistribution {
	index := make(map[string]int)
	out := make([]StateDistribution, 0)

	for _, d := range ds {
		i, ok := index[d.State]
		if !ok {
			i = len(out)
			index[d.State] = i
			out = append(out, StateDistribution{State: d.State})
		}
		s := &out[i]
		s.Count++
		s.Quantity += d.Quantity
		s.QuantityDistributed += d.QuantityDistributed
		if IsDelivered(d) {
			s.Delivered++
		} else {
			s.Pending++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].State < out[j].State
	})
	return out
}
