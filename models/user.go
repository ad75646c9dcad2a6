package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// GeoPoint is a GeoJSON point, coordinates are [longitude, latitude].
// Stored this way so the 2dsphere index on users.location can serve
// nearest-neighbor queries.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p *GeoPoint) Latitude() float64  { return p.Coordinates[1] }
func (p *GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// Privacy holds the per-user visibility switches.
type Privacy struct {
	HideProfileFromDiscovery bool `bson:"hideProfileFromDiscovery" json:"hideProfileFromDiscovery"`
	HideAge                  bool `bson:"hideAge" json:"hideAge"`
	HideDistance             bool `bson:"hideDistance" json:"hideDistance"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash *string            `bson:"passwordHash,omitempty" json:"-"`
	AuthProvider string             `bson:"authProvider" json:"-"` // email, google
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
	LastSeen     int64              `bson:"lastSeen" json:"lastSeen"`

	Username string `bson:"username" json:"username"`
	Name     string `bson:"name" json:"name"`
	Avatar   string `bson:"avatar" json:"avatar"`
	Bio      string `bson:"bio" json:"bio"`

	BirthDate     int64  `bson:"birthDate" json:"birthDate"` // unix seconds, 0 = unset
	BirthLocation string `bson:"birthLocation,omitempty" json:"birthLocation,omitempty"`

	// Body attributes. Height is centimeters, weight kilograms; the
	// measurement system only affects client display.
	HeightCm          *float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg          *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	MeasurementSystem string   `bson:"measurementSystem" json:"measurementSystem"` // metric, imperial
	BodyType          string   `bson:"bodyType,omitempty" json:"bodyType,omitempty"`
	Ethnicity         string   `bson:"ethnicity,omitempty" json:"ethnicity,omitempty"`

	Orientation        string   `bson:"orientation,omitempty" json:"orientation,omitempty"`
	Position           string   `bson:"position,omitempty" json:"position,omitempty"`
	RelationshipStatus string   `bson:"relationshipStatus,omitempty" json:"relationshipStatus,omitempty"`
	LookingFor         []string `bson:"lookingFor" json:"lookingFor"`

	Photos       []string  `bson:"photos" json:"photos"`
	QuickReplies []string  `bson:"quickReplies" json:"quickReplies"`
	Location     *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`
	Privacy      Privacy   `bson:"privacy" json:"privacy"`
	Status       string    `bson:"status" json:"status"` // available, busy
}

// Age returns the user's age in whole years at the given unix time,
// or -1 when no birth date is recorded.
func (u *User) Age(nowUnix int64) int {
	if u.BirthDate == 0 {
		return -1
	}
	const yearSeconds = 365.2425 * 24 * 3600
	age := int(float64(nowUnix-u.BirthDate) / yearSeconds)
	if age < 0 {
		return -1
	}
	return age
}
