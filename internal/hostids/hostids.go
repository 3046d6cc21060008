// Package hostids maps host application versions to the view identifiers the
// UI surface needs to locate chat controls. Host releases rename their view
// IDs, so each supported version carries its own table.
package hostids

// Table names the view identifiers for one host version.
type Table struct {
	GroupName    string
	SenderName   string
	MessageBody  string
	ComposeField string
	SenderRow    string
	Avatar       string
}

// tables is ordered oldest to newest. Resolve falls back to the newest
// known table when the running version is not listed.
var tables = []struct {
	version string
	table   Table
}{
	{
		version: "8.0.37",
		table: Table{
			GroupName:    "com.tencent.mm:id/kk1",
			SenderName:   "com.tencent.mm:id/brc",
			MessageBody:  "com.tencent.mm:id/bkl",
			ComposeField: "com.tencent.mm:id/bkk",
			SenderRow:    "com.tencent.mm:id/bn1",
			Avatar:       "com.tencent.mm:id/bk1",
		},
	},
	{
		version: "8.0.41",
		table: Table{
			GroupName:    "com.tencent.mm:id/mm2",
			SenderName:   "com.tencent.mm:id/brc",
			MessageBody:  "com.tencent.mm:id/bkl",
			ComposeField: "com.tencent.mm:id/bkk",
			SenderRow:    "com.tencent.mm:id/bn1",
			Avatar:       "com.tencent.mm:id/bk1",
		},
	},
	{
		version: "8.0.47",
		table: Table{
			GroupName:    "com.tencent.mm:id/obn",
			SenderName:   "com.tencent.mm:id/brc",
			MessageBody:  "com.tencent.mm:id/bkl",
			ComposeField: "com.tencent.mm:id/bkk",
			SenderRow:    "com.tencent.mm:id/bn1",
			Avatar:       "com.tencent.mm:id/bk1",
		},
	},
}

// Resolve returns the identifier table for the given host version. ok is
// false when the version is unknown; the newest known table is returned so
// callers can warn and proceed.
func Resolve(version string) (Table, bool) {
	for _, entry := range tables {
		if entry.version == version {
			return entry.table, true
		}
	}
	return tables[len(tables)-1].table, false
}

// Latest returns the newest known identifier table.
func Latest() Table {
	return tables[len(tables)-1].table
}

// Versions lists the supported host versions, oldest first.
func Versions() []string {
	out := make([]string, len(tables))
	for i, entry := range tables {
		out[i] = entry.version
	}
	return out
}
