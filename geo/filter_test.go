package geo

import (
	"net/url"
	"testing"
	"time"

	"ember/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func birthDate(age int, now int64) int64 {
	return now - int64(float64(age)*365.2425*24*3600) - 24*3600
}

func TestFilterActive(t *testing.T) {
	var f Filter
	if f.Active() {
		t.Error("empty filter reported active")
	}

	f.BodyType = "slim"
	if !f.Active() {
		t.Error("filter with bodyType reported inactive")
	}

	f = Filter{MinAge: intPtr(21)}
	if !f.Active() {
		t.Error("filter with minAge reported inactive")
	}

	f = Filter{LookingFor: []string{"dates"}}
	if !f.Active() {
		t.Error("filter with lookingFor reported inactive")
	}
}

func TestFilterMatches(t *testing.T) {
	now := time.Now().Unix()

	tests := []struct {
		name   string
		filter Filter
		user   models.User
		want   bool
	}{
		{
			name:   "age in range",
			filter: Filter{MinAge: intPtr(25), MaxAge: intPtr(35)},
			user:   models.User{BirthDate: birthDate(30, now)},
			want:   true,
		},
		{
			name:   "age below minimum",
			filter: Filter{MinAge: intPtr(25)},
			user:   models.User{BirthDate: birthDate(22, now)},
			want:   false,
		},
		{
			name:   "age filter excludes unset birth date",
			filter: Filter{MinAge: intPtr(18)},
			user:   models.User{},
			want:   false,
		},
		{
			name:   "height in range",
			filter: Filter{MinHeightCm: floatPtr(170), MaxHeightCm: floatPtr(190)},
			user:   models.User{HeightCm: floatPtr(180)},
			want:   true,
		},
		{
			name:   "height filter excludes missing height",
			filter: Filter{MinHeightCm: floatPtr(170)},
			user:   models.User{},
			want:   false,
		},
		{
			name:   "weight above maximum",
			filter: Filter{MaxWeightKg: floatPtr(80)},
			user:   models.User{WeightKg: floatPtr(95)},
			want:   false,
		},
		{
			name:   "categorical exact match",
			filter: Filter{BodyType: "athletic"},
			user:   models.User{BodyType: "athletic"},
			want:   true,
		},
		{
			name:   "categorical mismatch",
			filter: Filter{BodyType: "athletic"},
			user:   models.User{BodyType: "slim"},
			want:   false,
		},
		{
			name:   "categorical filter excludes unset attribute",
			filter: Filter{Ethnicity: "latino"},
			user:   models.User{},
			want:   false,
		},
		{
			name:   "lookingFor intersection",
			filter: Filter{LookingFor: []string{"dates", "friends"}},
			user:   models.User{LookingFor: []string{"friends", "networking"}},
			want:   true,
		},
		{
			name:   "lookingFor no overlap",
			filter: Filter{LookingFor: []string{"dates"}},
			user:   models.User{LookingFor: []string{"friends"}},
			want:   false,
		},
		{
			name: "conjunction requires all predicates",
			filter: Filter{
				MinAge:   intPtr(25),
				BodyType: "athletic",
			},
			user: models.User{
				BirthDate: birthDate(30, now),
				BodyType:  "slim",
			},
			want: false,
		},
		{
			name: "conjunction all pass",
			filter: Filter{
				MinAge:             intPtr(25),
				MaxAge:             intPtr(40),
				BodyType:           "athletic",
				RelationshipStatus: "single",
			},
			user: models.User{
				BirthDate:          birthDate(30, now),
				BodyType:           "athletic",
				RelationshipStatus: "single",
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(&tt.user, now); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{}
	q.Set("minAge", "21")
	q.Set("maxAge", "35")
	q.Set("minHeight", "170.5")
	q.Set("bodyType", "athletic")
	q.Set("lookingFor", "dates, friends,,networking")

	f := ParseFilter(q)

	if f.MinAge == nil || *f.MinAge != 21 {
		t.Errorf("MinAge = %v, want 21", f.MinAge)
	}
	if f.MaxAge == nil || *f.MaxAge != 35 {
		t.Errorf("MaxAge = %v, want 35", f.MaxAge)
	}
	if f.MinHeightCm == nil || *f.MinHeightCm != 170.5 {
		t.Errorf("MinHeightCm = %v, want 170.5", f.MinHeightCm)
	}
	if f.BodyType != "athletic" {
		t.Errorf("BodyType = %q, want athletic", f.BodyType)
	}
	if len(f.LookingFor) != 3 {
		t.Fatalf("LookingFor = %v, want 3 entries", f.LookingFor)
	}
	if f.LookingFor[0] != "dates" || f.LookingFor[1] != "friends" || f.LookingFor[2] != "networking" {
		t.Errorf("LookingFor = %v", f.LookingFor)
	}
}

func TestParseFilterIgnoresUnparseable(t *testing.T) {
	q := url.Values{}
	q.Set("minAge", "abc")
	q.Set("maxWeight", "heavy")

	f := ParseFilter(q)

	if f.MinAge != nil {
		t.Errorf("MinAge = %v, want nil for unparseable input", *f.MinAge)
	}
	if f.MaxWeightKg != nil {
		t.Errorf("MaxWeightKg = %v, want nil for unparseable input", *f.MaxWeightKg)
	}
	if f.Active() {
		t.Error("filter with only unparseable params reported active")
	}
}
