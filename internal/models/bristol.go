package models

import "fmt"

var bristolDescriptions = [MaxBristolType + 1]string{
	1: "separate hard lumps",
	2: "lumpy and sausage-like",
	3: "sausage with cracks on the surface",
	4: "smooth, soft sausage or snake",
	5: "soft blobs with clear-cut edges",
	6: "mushy consistency with ragged edges",
	7: "liquid consistency with no solid pieces",
}

// BristolDescription returns the scale description for a stool type.
// Out-of-range values are clamped first.
func BristolDescription(t int) string {
	return bristolDescriptions[ClampBristolType(t)]
}

// BristolLabel formats a stool type the way pickers and history rows show it,
// e.g. "Type 4 - smooth, soft sausage or snake".
func BristolLabel(t int) string {
	t = ClampBristolType(t)
	return fmt.Sprintf("Type %d - %s", t, bristolDescriptions[t])
}

// ChartBucket is a labelled time window and the number of events inside it.
// Buckets are derived on every analytics pass and never persisted.
type ChartBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
