package identity

// WorkerKeys is one worker's registered identifiers as stored.
type WorkerKeys struct {
	WorkerID         string
	IdentifierNumber string
	TaxID            string
}

// BuildIndexes normalizes the stored identifiers. On collisions the first
// worker wins so repeated runs resolve the same way.
func BuildIndexes(workers []WorkerKeys) Indexes {
	idx := Indexes{
		ByIdentifierNumber: make(map[string]string, len(workers)),
		ByTaxID:            make(map[string]string, len(workers)),
	}
	for _, w := range workers {
		if key := DigitsOnly(w.IdentifierNumber); key != "" {
			if _, exists := idx.ByIdentifierNumber[key]; !exists {
				idx.ByIdentifierNumber[key] = w.WorkerID
			}
		}
		if key := DigitsOnly(w.TaxID); key != "" {
			if _, exists := idx.ByTaxID[key]; !exists {
				idx.ByTaxID[key] = w.WorkerID
			}
		}
	}
	return idx
}
