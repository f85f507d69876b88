package models

// DictionaryEntry is one row of the data dictionary: the declared dtype and
// optional allowed-values constraint for a (table, column) pair.
//
// AllowedValues is kept as the raw expression from the file; the schema
// registry parses it. Supported forms: empty (unconstrained), a
// pipe-separated enumerated set ("train|val|test"), an inclusive interval
// with omissible bounds ("[0,1]", "[0,]"), or a single comparator
// (">=0", "<5").
type DictionaryEntry struct {
	TableName     string `json:"table_name"`
	ColumnName    string `json:"column_name"`
	Dtype         Dtype  `json:"dtype"`
	AllowedValues string `json:"allowed_values,omitempty"`
	Description   string `json:"description,omitempty"`
}
