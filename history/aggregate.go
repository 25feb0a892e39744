package history

import (
	"sort"
	"time"
)

// Sample - точка временного ряда (период, значение)
type Sample struct {
	Period time.Time
	Value  float64
}

// Series - агрегированный ряд одного сегмента
type Series struct {
	Group     string
	Dimension Dimension
	Value     string // значение разреза, пустое для DimensionNone
	Samples   []Sample
}

type seriesKey struct {
	group string
	value string
}

// Aggregate суммирует наблюдения по (группа, значение разреза, период)
// и возвращает ряды, отсортированные по группе и значению разреза.
// Точки каждого ряда упорядочены по возрастанию периода.
// Наблюдения без значения разреза в разрезные ряды не попадают.
func Aggregate(observations []Observation, dim Dimension) []Series {
	sums := make(map[seriesKey]map[time.Time]float64)

	for _, o := range observations {
		value := dim.ValueOf(o)
		if dim != DimensionNone && value == "" {
			continue
		}
		key := seriesKey{group: o.Group, value: value}
		if sums[key] == nil {
			sums[key] = make(map[time.Time]float64)
		}
		sums[key][o.Period] += o.Value
	}

	result := make([]Series, 0, len(sums))
	for key, byPeriod := range sums {
		samples := make([]Sample, 0, len(byPeriod))
		for period, value := range byPeriod {
			samples = append(samples, Sample{Period: period, Value: value})
		}
		sort.Slice(samples, func(i, j int) bool {
			return samples[i].Period.Before(samples[j].Period)
		})

		result = append(result, Series{
			Group:     key.group,
			Dimension: dim,
			Value:     key.value,
			Samples:   samples,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Value < result[j].Value
	})

	return result
}

// DistinctValues возвращает отсортированные непустые значения разреза
func DistinctValues(observations []Observation, dim Dimension) []string {
	seen := make(map[string]struct{})
	for _, o := range observations {
		if v := dim.ValueOf(o); v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// LatestPeriod возвращает максимальный период среди наблюдений
func LatestPeriod(observations []Observation) (time.Time, bool) {
	var latest time.Time
	for _, o := range observations {
		if o.Period.After(latest) {
			latest = o.Period
		}
	}
	return latest, !latest.IsZero()
}
