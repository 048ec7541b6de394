package model

import "time"

// Table status values as projected for a specific date+time query.
// Only "blocked" is persisted (maintenance flag); the others are
// derived from overlapping reservations at read time.
const (
	TableAvailable = "available"
	TableReserved  = "reserved"
	TableOccupied  = "occupied"
	TableBlocked   = "blocked"
)

// Table describes a physical table in a restaurant. Tables are
// uniquely identified by their restaurant and number. Position and
// shape exist for floor-map rendering in clients and carry no booking
// semantics.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant to which this table belongs.
//  Number       – table number, unique within the restaurant.
//  Capacity     – maximum party size (≥ 1).
//  Shape        – "rect" or "round".
//  Zone         – seating zone label ("main", "terrace", ...).
//  PosX, PosY   – floor-map coordinates.
//  Width,Height – floor-map dimensions.
//  IsBlocked    – persistent maintenance flag; blocked tables are never
//                 offered by the availability engine.
//  Status       – derived projection for a specific query; not stored.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Table struct {
	ID           uint64    // restaurant_tables.id
	RestaurantID uint64    // restaurant_tables.restaurant_id
	Number       uint32    // restaurant_tables.number
	Capacity     uint32    // restaurant_tables.capacity
	Shape        string    // restaurant_tables.shape
	Zone         string    // restaurant_tables.zone
	PosX         int32     // restaurant_tables.pos_x
	PosY         int32     // restaurant_tables.pos_y
	Width        int32     // restaurant_tables.width
	Height       int32     // restaurant_tables.height
	IsBlocked    bool      // restaurant_tables.is_blocked
	Status       string    // derived, never persisted
	CreatedAt    time.Time // restaurant_tables.created_at
	UpdatedAt    time.Time // restaurant_tables.updated_at
}
