package naming

// NoModality keys anatomical and field-map counters.
const NoModality = "none"

type counterKey struct {
	section  string
	sequence string
	modality string
}

// RunCounterTable hands out fallback run numbers scoped by section, sequence
// and modality. It is not safe for concurrent use.
type RunCounterTable struct {
	counts map[counterKey]int
}

func NewRunCounterTable() *RunCounterTable {
	return &RunCounterTable{counts: make(map[counterKey]int)}
}

// Next increments and returns the counter for the key. An empty modality is
// stored as NoModality.
func (t *RunCounterTable) Next(section, sequence, modality string) int {
	if modality == "" {
		modality = NoModality
	}
	key := counterKey{section: section, sequence: sequence, modality: modality}
	t.counts[key]++
	return t.counts[key]
}
