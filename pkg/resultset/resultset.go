package resultset

// ResultSet is a materialised, forward-only cursor over decoded records.
//
// Every record is decoded by Parse before the ResultSet is returned, so
// iteration never touches the network or the metadata cache. A ResultSet is
// not safe for concurrent iteration and cannot be rewound.
type ResultSet struct {
	header  Header
	records []Record
	stats   Statistics
	pos     int
}

// HasNext reports whether Next will return another record.
func (rs *ResultSet) HasNext() bool { return rs.pos < len(rs.records) }

// Next returns the next record, or ErrEndOfSequence once all were consumed.
func (rs *ResultSet) Next() (Record, error) {
	if rs.pos >= len(rs.records) {
		return Record{}, ErrEndOfSequence
	}
	rec := rs.records[rs.pos]
	rs.pos++
	return rec, nil
}

// Size returns the total number of records, consumed or not.
func (rs *ResultSet) Size() int { return len(rs.records) }

// Empty reports whether the query produced no records.
func (rs *ResultSet) Empty() bool { return len(rs.records) == 0 }

// Header returns the column header. Replies without a result section have an
// empty header.
func (rs *ResultSet) Header() Header { return rs.header }

// Statistics returns the server-reported counters.
func (rs *ResultSet) Statistics() Statistics { return rs.stats }
