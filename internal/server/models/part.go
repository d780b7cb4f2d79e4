package models

// Part is a single item on a build list. Price is in whole currency units.
type Part struct {
	ID           int64
	Name         string
	PartType     *string
	PartNumber   *string
	Manufacturer *string
	Description  *string
	Price        *int
	BuildListID  int64
}

// PartUpdate carries the fields of a part update; nil means unchanged.
// A non-nil BuildListID re-parents the part.
type PartUpdate struct {
	Name         *string
	PartType     *string
	PartNumber   *string
	Manufacturer *string
	Description  *string
	Price        *int
	BuildListID  *int64
}

// Apply copies the set fields of upd onto the part.
func (p *Part) Apply(upd PartUpdate) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.PartType != nil {
		p.PartType = upd.PartType
	}
	if upd.PartNumber != nil {
		p.PartNumber = upd.PartNumber
	}
	if upd.Manufacturer != nil {
		p.Manufacturer = upd.Manufacturer
	}
	if upd.Description != nil {
		p.Description = upd.Description
	}
	if upd.Price != nil {
		p.Price = upd.Price
	}
	if upd.BuildListID != nil {
		p.BuildListID = *upd.BuildListID
	}
}
