package models

// Car belongs to exactly one user. UserID never changes after creation.
type Car struct {
	ID       int64
	Make     string
	Model    string
	Year     int
	Trim     *string
	VIN      *string
	ImageURL *string
	UserID   int64
}

// CarUpdate carries the fields of a car update; nil means unchanged.
type CarUpdate struct {
	Make     *string
	Model    *string
	Year     *int
	Trim     *string
	VIN      *string
	ImageURL *string
}

// Apply copies the set fields of upd onto the car.
func (c *Car) Apply(upd CarUpdate) {
	if upd.Make != nil {
		c.Make = *upd.Make
	}
	if upd.Model != nil {
		c.Model = *upd.Model
	}
	if upd.Year != nil {
		c.Year = *upd.Year
	}
	if upd.Trim != nil {
		c.Trim = upd.Trim
	}
	if upd.VIN != nil {
		c.VIN = upd.VIN
	}
	if upd.ImageURL != nil {
		c.ImageURL = upd.ImageURL
	}
}
