package models

// BuildList groups planned parts for a car. Its owner is the car's owner.
type BuildList struct {
	ID          int64
	Name        string
	Description *string
	CarID       int64
}

// BuildListUpdate carries the fields of a build list update; nil means
// unchanged. A non-nil CarID re-parents the build list.
type BuildListUpdate struct {
	Name        *string
	Description *string
	CarID       *int64
}

// Apply copies the set fields of upd onto the build list.
func (b *BuildList) Apply(upd BuildListUpdate) {
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Description != nil {
		b.Description = upd.Description
	}
	if upd.CarID != nil {
		b.CarID = *upd.CarID
	}
}
