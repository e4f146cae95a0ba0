package store

import (
	_ "embed"
)

//go:embed sample_values.json
var sampleValues []byte

// SampleValues returns the bundled starter value table.
func SampleValues() ValueTable {
	table, err := DecodeValues(sampleValues)
	if err != nil {
		panic("store: bundled sample table is invalid: " + err.Error())
	}
	return table
}
