package orders

type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusSentToKitchen Status = "SENT_TO_KITCHEN"
	StatusInPrep        Status = "IN_PREP"
	StatusReady         Status = "READY"
	StatusServed        Status = "SERVED"
	StatusPaid          Status = "PAID"
	StatusCancelled     Status = "CANCELLED"
)

// Pipeline order. Transitions are not checked against it: any recognized
// status may be requested from any non-terminal one, including earlier ones.
var knownStatuses = []Status{
	StatusOpen,
	StatusSentToKitchen,
	StatusInPrep,
	StatusReady,
	StatusServed,
	StatusPaid,
	StatusCancelled,
}

func Statuses() []Status {
	out := make([]Status, len(knownStatuses))
	copy(out, knownStatuses)
	return out
}

func ParseStatus(s string) (Status, error) {
	for _, st := range knownStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Terminal statuses accept no further item or status mutation.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

type TableStatus string

const (
	TableFree     TableStatus = "FREE"
	TableOccupied TableStatus = "OCCUPIED"
	TableReserved TableStatus = "RESERVED"
)

func ParseTableStatus(s string) (TableStatus, error) {
	switch TableStatus(s) {
	case TableFree, TableOccupied, TableReserved:
		return TableStatus(s), nil
	}
	return "", ErrInvalidTableStatus
}
