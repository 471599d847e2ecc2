package actions

import (
	"context"
)

type calculateParams struct {
	Operation string    `mapstructure:"operation" validate:"required"`
	Numbers   []float64 `mapstructure:"numbers"`
}

// calculate computes a numeric aggregate over the given numbers.
// Empty input yields 0 for sum and average, null for max and min.
func (r *Registry) calculate(_ context.Context, params map[string]interface{}) (interface{}, error) {
	var p calculateParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	var result interface{}
	switch p.Operation {
	case "sum":
		result = sum(p.Numbers)
	case "average":
		if len(p.Numbers) == 0 {
			result = float64(0)
		} else {
			result = sum(p.Numbers) / float64(len(p.Numbers))
		}
	case "max":
		result = extremum(p.Numbers, func(a, b float64) bool { return a > b })
	case "min":
		result = extremum(p.Numbers, func(a, b float64) bool { return a < b })
	default:
		return nil, NewValidationError("unknown operation: %s", p.Operation)
	}

	return map[string]interface{}{
		"operation": p.Operation,
		"result":    result,
	}, nil
}

func sum(numbers []float64) float64 {
	var total float64
	for _, n := range numbers {
		total += n
	}
	return total
}

// extremum returns the element preferred by the comparison, or nil for
// an empty slice.
func extremum(numbers []float64, better func(a, b float64) bool) interface{} {
	if len(numbers) == 0 {
		return nil
	}
	best := numbers[0]
	for _, n := range numbers[1:] {
		if better(n, best) {
			best = n
		}
	}
	return best
}

// summarizeData reports user and task counts, with tasks bucketed by
// status and priority. The bucket keys are fixed; tasks carrying other
// statuses or priorities count toward the totals only.
func (r *Registry) summarizeData(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	userCount, err := r.store.Users.Count(ctx)
	if err != nil {
		return nil, err
	}

	taskCount, err := r.store.Tasks.Count(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := r.store.Tasks.CountByField(ctx, "status")
	if err != nil {
		return nil, err
	}

	byPriority, err := r.store.Tasks.CountByField(ctx, "priority")
	if err != nil {
		return nil, err
	}

	statusBuckets := map[string]int{
		"pending":     byStatus["pending"],
		"in_progress": byStatus["in_progress"],
		"completed":   byStatus["completed"],
	}

	priorityBuckets := map[string]int{
		"high":   byPriority["high"],
		"medium": byPriority["medium"],
		"low":    byPriority["low"],
	}

	return map[string]interface{}{
		"users":             userCount,
		"tasks":             taskCount,
		"tasks_by_status":   statusBuckets,
		"tasks_by_priority": priorityBuckets,
	}, nil
}
