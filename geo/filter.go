package geo

import (
	"net/url"
	"strconv"
	"strings"

	"ember/models"
)

// Filter is the conjunction of optional discovery predicates. Nil pointers
// mean "not filtered". The 2dsphere query cannot express several independent
// IN-clauses at once, so these run in application code on the candidates it
// returns.
type Filter struct {
	MinAge *int
	MaxAge *int

	MinHeightCm *float64
	MaxHeightCm *float64
	MinWeightKg *float64
	MaxWeightKg *float64

	BodyType           string
	Ethnicity          string
	Orientation        string
	Position           string
	RelationshipStatus string

	LookingFor []string
}

// Active reports whether any predicate is set.
func (f *Filter) Active() bool {
	return f.MinAge != nil || f.MaxAge != nil ||
		f.MinHeightCm != nil || f.MaxHeightCm != nil ||
		f.MinWeightKg != nil || f.MaxWeightKg != nil ||
		f.BodyType != "" || f.Ethnicity != "" || f.Orientation != "" ||
		f.Position != "" || f.RelationshipStatus != "" ||
		len(f.LookingFor) > 0
}

// Matches evaluates every active predicate against the candidate. Range
// filters exclude candidates missing the attribute; categorical filters
// require an exact match; the looking-for filter requires a non-empty
// intersection.
func (f *Filter) Matches(u *models.User, nowUnix int64) bool {
	if f.MinAge != nil || f.MaxAge != nil {
		age := u.Age(nowUnix)
		if age < 0 {
			return false
		}
		if f.MinAge != nil && age < *f.MinAge {
			return false
		}
		if f.MaxAge != nil && age > *f.MaxAge {
			return false
		}
	}

	if f.MinHeightCm != nil || f.MaxHeightCm != nil {
		if u.HeightCm == nil {
			return false
		}
		if f.MinHeightCm != nil && *u.HeightCm < *f.MinHeightCm {
			return false
		}
		if f.MaxHeightCm != nil && *u.HeightCm > *f.MaxHeightCm {
			return false
		}
	}

	if f.MinWeightKg != nil || f.MaxWeightKg != nil {
		if u.WeightKg == nil {
			return false
		}
		if f.MinWeightKg != nil && *u.WeightKg < *f.MinWeightKg {
			return false
		}
		if f.MaxWeightKg != nil && *u.WeightKg > *f.MaxWeightKg {
			return false
		}
	}

	if f.BodyType != "" && u.BodyType != f.BodyType {
		return false
	}
	if f.Ethnicity != "" && u.Ethnicity != f.Ethnicity {
		return false
	}
	if f.Orientation != "" && u.Orientation != f.Orientation {
		return false
	}
	if f.Position != "" && u.Position != f.Position {
		return false
	}
	if f.RelationshipStatus != "" && u.RelationshipStatus != f.RelationshipStatus {
		return false
	}

	if len(f.LookingFor) > 0 && !intersects(u.LookingFor, f.LookingFor) {
		return false
	}

	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// ParseFilter builds a Filter from query parameters. Unparseable numbers are
// ignored rather than rejected, matching how the client sends partial filter
// state.
func ParseFilter(q url.Values) Filter {
	var f Filter

	f.MinAge = intParam(q, "minAge")
	f.MaxAge = intParam(q, "maxAge")
	f.MinHeightCm = floatParam(q, "minHeight")
	f.MaxHeightCm = floatParam(q, "maxHeight")
	f.MinWeightKg = floatParam(q, "minWeight")
	f.MaxWeightKg = floatParam(q, "maxWeight")

	f.BodyType = q.Get("bodyType")
	f.Ethnicity = q.Get("ethnicity")
	f.Orientation = q.Get("orientation")
	f.Position = q.Get("position")
	f.RelationshipStatus = q.Get("relationshipStatus")

	if raw := q.Get("lookingFor"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.LookingFor = append(f.LookingFor, part)
			}
		}
	}

	return f
}

func intParam(q url.Values, key string) *int {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func floatParam(q url.Values, key string) *float64 {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
