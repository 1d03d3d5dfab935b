package shared

// Record is an entity row shown on a list screen. Every list entity has a
// numeric id and an active flag that can be toggled.
type Record interface {
	RecordID() int
	Active() bool
	SetActive(active bool)
}
